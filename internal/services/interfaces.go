package services

import (
	"context"
	"time"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
)

// AttemptService drives the student-facing attempt lifecycle.
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error)
	SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, userID string) (*models.AttemptAnswer, error)
	Submit(ctx context.Context, attemptID uint, userID string) (*AttemptResponse, error)
	List(ctx context.Context, filters repositories.AttemptFilters, requesterID string) ([]*models.Attempt, int64, error)
	GetResults(ctx context.Context, attemptID uint, requesterID string) (*AttemptResultsResponse, error)
}

// ReviewService drives tutor review of open answers and attempt finalization.
type ReviewService interface {
	ReviewOpenAnswer(ctx context.Context, attemptAnswerID uint, req *ReviewAnswerRequest, reviewerID string) (*ReviewAnswerResponse, error)
	ListPendingReviews(ctx context.Context, requesterID string, page, pageSize int) (*PendingReviewsResponse, error)
}

// UserService exposes the aggregated identity view.
type UserService interface {
	GetByID(ctx context.Context, id string, requesterID string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters, requesterID string) ([]*models.User, int64, error)
}

// ExportService produces downloadable result sheets.
type ExportService interface {
	ExportAttemptResults(ctx context.Context, attemptID uint, requesterID string) ([]byte, string, error)
}

// ===== REQUESTS =====

type StartAttemptRequest struct {
	AssessmentID uint `json:"assessment_id" validate:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID       uint    `json:"question_id" validate:"required"`
	SelectedOptionID *uint   `json:"selected_option_id,omitempty"`
	TextAnswer       *string `json:"text_answer,omitempty"`
}

type ReviewAnswerRequest struct {
	IsCorrect      *bool   `json:"is_correct" validate:"required"`
	TeacherComment *string `json:"teacher_comment,omitempty"`
}

// ===== RESPONSES =====

// AttemptResponse wraps an attempt for start/submit flows. Resumed is true
// when Start returned an already active attempt instead of creating one.
type AttemptResponse struct {
	Attempt *models.Attempt `json:"attempt"`
	Resumed bool            `json:"resumed,omitempty"`
}

// AttemptResultsResponse is the full result view of a finished attempt.
type AttemptResultsResponse struct {
	Attempt    AttemptSummary    `json:"attempt"`
	Assessment AssessmentSummary `json:"assessment"`
	Results    *AttemptResults   `json:"results"`
	Answers    []AnswerDetail    `json:"answers"`
}

type AttemptSummary struct {
	ID          uint                 `json:"id"`
	Status      models.AttemptStatus `json:"status"`
	Score       *float64             `json:"score,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	SubmittedAt *time.Time           `json:"submitted_at,omitempty"`
	GradedAt    *time.Time           `json:"graded_at,omitempty"`
	UserID      string               `json:"user_id"`
}

type AssessmentSummary struct {
	ID           uint                  `json:"id"`
	Slug         string                `json:"slug"`
	Title        string                `json:"title"`
	Type         models.AssessmentType `json:"type"`
	PassingScore int                   `json:"passing_score"`
}

// AnswerDetail is the per-question line of the result view. Option texts and
// the correct option are resolved for multiple choice; text answer, comment
// and review metadata for open questions.
type AnswerDetail struct {
	QuestionID   uint                `json:"question_id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type"`

	ArgumentID    *uint   `json:"argument_id,omitempty"`
	ArgumentTitle *string `json:"argument_title,omitempty"`

	SelectedOptionID   *uint   `json:"selected_option_id,omitempty"`
	SelectedOptionText *string `json:"selected_option_text,omitempty"`
	CorrectOptionID    *uint   `json:"correct_option_id,omitempty"`
	CorrectOptionText  *string `json:"correct_option_text,omitempty"`
	Explanation        *string `json:"explanation,omitempty"`

	TextAnswer     *string    `json:"text_answer,omitempty"`
	TeacherComment *string    `json:"teacher_comment,omitempty"`
	ReviewerID     *string    `json:"reviewer_id,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`

	Status    models.AttemptStatus `json:"status"`
	IsCorrect *bool                `json:"is_correct,omitempty"`
}

// ReviewAnswerResponse reports the outcome of a single review and where the
// parent attempt ended up.
type ReviewAnswerResponse struct {
	Answer                   *models.AttemptAnswer `json:"answer"`
	AttemptID                uint                  `json:"attempt_id"`
	AttemptStatus            models.AttemptStatus  `json:"attempt_status"`
	AllOpenQuestionsReviewed bool                  `json:"all_open_questions_reviewed"`
	PendingReview            int                   `json:"pending_review"`
}

// PendingReviewsResponse lists attempts awaiting open-answer review.
type PendingReviewsResponse struct {
	Attempts []PendingReviewAttempt `json:"attempts"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

type PendingReviewAttempt struct {
	AttemptID       uint       `json:"attempt_id"`
	AssessmentID    uint       `json:"assessment_id"`
	AssessmentTitle string     `json:"assessment_title"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	PendingCount    int        `json:"pending_count"`
}
