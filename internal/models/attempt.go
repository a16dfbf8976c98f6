package models

import (
	"errors"
	"time"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAnswerNotGradeable = errors.New("cannot grade an answer that is not submitted")
)

// Attempt is one student's instance of taking one assessment.
//
// Invariants: Score is present iff Status is GRADED; SubmittedAt is present
// iff Status is not IN_PROGRESS. Attempts are never deleted in normal flow.
type Attempt struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	Status AttemptStatus `json:"status" gorm:"not null;default:IN_PROGRESS;index" validate:"omitempty,attempt_status"`

	// Score 0-100, only set once the attempt is graded.
	Score *float64 `json:"score,omitempty" validate:"omitempty,min=0,max=100"`

	StartedAt          time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	GradedAt           *time.Time `json:"graded_at,omitempty"`
	TimeLimitExpiresAt *time.Time `json:"time_limit_expires_at,omitempty"`

	UserID       string `json:"user_id" gorm:"not null;size:255;index"`
	AssessmentID uint   `json:"assessment_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User       User          `json:"-" gorm:"foreignKey:UserID"`
	Assessment Assessment    `json:"-" gorm:"foreignKey:AssessmentID"`
	Answers    []AttemptAnswer `json:"-" gorm:"foreignKey:AttemptID"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) IsInProgress() bool { return a.Status.IsInProgress() }
func (a *Attempt) IsSubmitted() bool  { return a.Status.IsSubmitted() }
func (a *Attempt) IsGraded() bool     { return a.Status.IsGraded() }

// HasTimeLimit reports whether a time limit was set when the attempt started.
func (a *Attempt) HasTimeLimit() bool {
	return a.TimeLimitExpiresAt != nil
}

// IsExpired reports whether the attempt's time limit has passed. The limit is
// informational; enforcement happens only at submit time.
func (a *Attempt) IsExpired(now time.Time) bool {
	return a.HasTimeLimit() && now.After(*a.TimeLimitExpiresAt)
}

// Submit moves the attempt IN_PROGRESS -> SUBMITTED.
func (a *Attempt) Submit(now time.Time) error {
	next, err := a.Status.Transition(AttemptSubmitted)
	if err != nil {
		return ErrInvalidTransition
	}
	a.Status = next
	a.SubmittedAt = &now
	a.UpdatedAt = now
	return nil
}

// Grade finalizes the attempt with its score. Allowed from SUBMITTED or
// GRADING.
func (a *Attempt) Grade(score float64, now time.Time) error {
	next, err := a.Status.Transition(AttemptGraded)
	if err != nil {
		return ErrInvalidTransition
	}
	a.Status = next
	a.Score = &score
	a.GradedAt = &now
	a.UpdatedAt = now
	return nil
}

// AttemptAnswer is one student response to one question within one attempt.
// Exactly one of SelectedOptionID / TextAnswer is populated once answered.
// Open answers are graded exactly once, by exactly one reviewer, and are
// immutable afterwards.
type AttemptAnswer struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SelectedOptionID *uint   `json:"selected_option_id,omitempty" gorm:"index"`
	TextAnswer       *string `json:"text_answer,omitempty" gorm:"type:text"`

	Status    AttemptStatus `json:"status" gorm:"not null;default:IN_PROGRESS;index" validate:"omitempty,attempt_status"`
	IsCorrect *bool         `json:"is_correct,omitempty"`

	TeacherComment *string `json:"teacher_comment,omitempty" gorm:"type:text"`
	ReviewerID     *string `json:"reviewer_id,omitempty" gorm:"size:255;index"`

	AttemptID  uint `json:"attempt_id" gorm:"not null;index:idx_attempt_question,unique"`
	QuestionID uint `json:"question_id" gorm:"not null;index:idx_attempt_question,unique"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempt  Attempt  `json:"-" gorm:"foreignKey:AttemptID"`
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

func (a *AttemptAnswer) IsSubmitted() bool { return a.Status.IsSubmitted() }
func (a *AttemptAnswer) IsGraded() bool    { return a.Status.IsGraded() }

// HasAnswer reports whether the student actually answered: a selected option
// or non-empty text.
func (a *AttemptAnswer) HasAnswer() bool {
	if a.SelectedOptionID != nil {
		return true
	}
	return a.TextAnswer != nil && *a.TextAnswer != ""
}

// SelectOption records a multiple-choice selection. Clears any text answer so
// the one-of invariant holds.
func (a *AttemptAnswer) SelectOption(optionID uint, now time.Time) error {
	if !a.Status.IsInProgress() {
		return ErrInvalidTransition
	}
	a.SelectedOptionID = &optionID
	a.TextAnswer = nil
	a.UpdatedAt = now
	return nil
}

// AnswerText records an open answer. Clears any selected option.
func (a *AttemptAnswer) AnswerText(text string, now time.Time) error {
	if !a.Status.IsInProgress() {
		return ErrInvalidTransition
	}
	a.TextAnswer = &text
	a.SelectedOptionID = nil
	a.UpdatedAt = now
	return nil
}

// Submit moves the answer IN_PROGRESS -> SUBMITTED.
func (a *AttemptAnswer) Submit(now time.Time) error {
	next, err := a.Status.Transition(AttemptSubmitted)
	if err != nil {
		return ErrInvalidTransition
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}

// Grade records a review verdict and moves the answer to GRADED. Allowed from
// SUBMITTED or GRADING; grading an already-graded answer fails.
func (a *AttemptAnswer) Grade(isCorrect bool, comment *string, reviewerID string, now time.Time) error {
	next, err := a.Status.Transition(AttemptGraded)
	if err != nil {
		return ErrAnswerNotGradeable
	}
	a.Status = next
	a.IsCorrect = &isCorrect
	a.TeacherComment = comment
	a.ReviewerID = &reviewerID
	a.UpdatedAt = now
	return nil
}
