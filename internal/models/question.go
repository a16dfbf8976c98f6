package models

import "time"

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionOpen           QuestionType = "OPEN"
)

func (t QuestionType) IsMultipleChoice() bool { return t == QuestionMultipleChoice }
func (t QuestionType) IsOpen() bool           { return t == QuestionOpen }

// Question belongs to an assessment and optionally to an argument (topic).
// Immutable after creation as far as attempt flows are concerned.
type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Text string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Type QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	AssessmentID uint  `json:"assessment_id" gorm:"not null;index"`
	ArgumentID   *uint `json:"argument_id,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options  []QuestionOption `json:"-" gorm:"foreignKey:QuestionID"`
	Argument *Argument        `json:"-" gorm:"foreignKey:ArgumentID"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOption is one selectable choice of a multiple-choice question.
type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Text       string `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

// Argument is a topic label grouping questions inside a SIMULADO assessment,
// used only for per-topic aggregate reporting.
type Argument struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Title        string `json:"title" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	AssessmentID uint   `json:"assessment_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Argument) TableName() string {
	return "arguments"
}
