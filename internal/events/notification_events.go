package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of notification events
type EventType string

const (
	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptGraded    EventType = "attempt.graded"

	// Review events
	EventAnswerReviewed        EventType = "answer.reviewed"
	EventManualGradingRequired EventType = "grading.manual_required"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt notification event payloads

type AttemptStartedEvent struct {
	AttemptID       uint      `json:"attempt_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	UserID          string    `json:"user_id"`
	StartedAt       time.Time `json:"started_at"`
	TimeLimit       *int      `json:"time_limit,omitempty"` // minutes
}

type AttemptSubmittedEvent struct {
	AttemptID       uint      `json:"attempt_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	UserID          string    `json:"user_id"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Score           *float64  `json:"score,omitempty"`
	ReviewRequired  bool      `json:"review_required"`
}

type AttemptGradedEvent struct {
	AttemptID       uint      `json:"attempt_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	UserID          string    `json:"user_id"`
	GradedAt        time.Time `json:"graded_at"`
	Score           float64   `json:"score"`
	Passed          bool      `json:"passed"`
}

// Review notification event payloads

type AnswerReviewedEvent struct {
	AttemptAnswerID uint      `json:"attempt_answer_id"`
	AttemptID       uint      `json:"attempt_id"`
	QuestionID      uint      `json:"question_id"`
	UserID          string    `json:"user_id"`
	ReviewerID      string    `json:"reviewer_id"`
	IsCorrect       bool      `json:"is_correct"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

type ManualGradingRequiredEvent struct {
	AttemptID       uint      `json:"attempt_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	UserID          string    `json:"user_id"`
	RequiredAt      time.Time `json:"required_at"`
	PendingCount    int       `json:"pending_count"`
}

// Event factory functions

func NewAttemptStartedEvent(attemptID, assessmentID uint, title string, userID string, startedAt time.Time, timeLimit *int) *NotificationEvent {
	return newEvent(EventAttemptStarted, AttemptStartedEvent{
		AttemptID:       attemptID,
		AssessmentID:    assessmentID,
		AssessmentTitle: title,
		UserID:          userID,
		StartedAt:       startedAt,
		TimeLimit:       timeLimit,
	})
}

func NewAttemptSubmittedEvent(attemptID, assessmentID uint, title string, userID string, submittedAt time.Time, score *float64, reviewRequired bool) *NotificationEvent {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:       attemptID,
		AssessmentID:    assessmentID,
		AssessmentTitle: title,
		UserID:          userID,
		SubmittedAt:     submittedAt,
		Score:           score,
		ReviewRequired:  reviewRequired,
	})
}

func NewAttemptGradedEvent(attemptID, assessmentID uint, title string, userID string, gradedAt time.Time, score float64, passed bool) *NotificationEvent {
	return newEvent(EventAttemptGraded, AttemptGradedEvent{
		AttemptID:       attemptID,
		AssessmentID:    assessmentID,
		AssessmentTitle: title,
		UserID:          userID,
		GradedAt:        gradedAt,
		Score:           score,
		Passed:          passed,
	})
}

func NewAnswerReviewedEvent(attemptAnswerID, attemptID, questionID uint, userID, reviewerID string, isCorrect bool, reviewedAt time.Time) *NotificationEvent {
	return newEvent(EventAnswerReviewed, AnswerReviewedEvent{
		AttemptAnswerID: attemptAnswerID,
		AttemptID:       attemptID,
		QuestionID:      questionID,
		UserID:          userID,
		ReviewerID:      reviewerID,
		IsCorrect:       isCorrect,
		ReviewedAt:      reviewedAt,
	})
}

func NewManualGradingRequiredEvent(attemptID, assessmentID uint, title string, userID string, requiredAt time.Time, pendingCount int) *NotificationEvent {
	return newEvent(EventManualGradingRequired, ManualGradingRequiredEvent{
		AttemptID:       attemptID,
		AssessmentID:    assessmentID,
		AssessmentTitle: title,
		UserID:          userID,
		RequiredAt:      requiredAt,
		PendingCount:    pendingCount,
	})
}

func newEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "assessment-service",
		Version:   "1.0",
		Data:      data,
	}
}
