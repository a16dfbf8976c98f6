package repositories

import (
	"context"
	"time"

	"github.com/revisa-edu/assessment-service/internal/models"
)

// Repository aggregates all entity repositories. WithTx runs fn against a
// repository bound to a single database transaction; returning an error rolls
// the transaction back.
type Repository interface {
	Attempt() AttemptRepository
	AttemptAnswer() AttemptAnswerRepository
	Assessment() AssessmentRepository
	Question() QuestionRepository
	AnswerKey() AnswerKeyRepository
	Argument() ArgumentRepository
	User() UserRepository

	WithTx(ctx context.Context, fn func(Repository) error) error
}

// AttemptRepository provides persistence for assessment attempts.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	Update(ctx context.Context, attempt *models.Attempt) error

	// GetActiveByUserAndAssessment returns the user's IN_PROGRESS attempt
	// for the assessment, or a not-found error.
	GetActiveByUserAndAssessment(ctx context.Context, userID string, assessmentID uint) (*models.Attempt, error)

	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)

	// FinalizeIfSubmitted atomically moves the attempt SUBMITTED -> GRADED
	// with the given score. Returns false when the attempt was no longer
	// SUBMITTED, which callers treat as "someone else finalized first".
	FinalizeIfSubmitted(ctx context.Context, id uint, score float64, gradedAt time.Time) (bool, error)
}

// AttemptAnswerRepository provides persistence for per-question responses.
type AttemptAnswerRepository interface {
	Create(ctx context.Context, answer *models.AttemptAnswer) error
	GetByID(ctx context.Context, id uint) (*models.AttemptAnswer, error)
	Update(ctx context.Context, answer *models.AttemptAnswer) error

	GetByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error)
	GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.AttemptAnswer, error)

	// SubmitAllInProgress promotes every IN_PROGRESS answer of the attempt
	// to SUBMITTED in one statement.
	SubmitAllInProgress(ctx context.Context, attemptID uint, now time.Time) error

	// GradeSubmitted persists a review verdict with an optimistic guard:
	// the row is updated only while its status is still SUBMITTED and no
	// reviewer is recorded. Returns false when the guard rejected the
	// write (a concurrent reviewer won).
	GradeSubmitted(ctx context.Context, answer *models.AttemptAnswer) (bool, error)

	// ListPendingReview returns all SUBMITTED answers, oldest first.
	ListPendingReview(ctx context.Context) ([]*models.AttemptAnswer, error)
}

// AssessmentRepository provides lookups for exam definitions.
type AssessmentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetBySlug(ctx context.Context, slug string) (*models.Assessment, error)
	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, int64, error)
}

// QuestionRepository provides lookups for questions and their options.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByAssessment(ctx context.Context, assessmentID uint) ([]*models.Question, error)
	GetOptionsByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.QuestionOption, error)
}

// AnswerKeyRepository provides lookups for canonical correct answers.
type AnswerKeyRepository interface {
	GetByQuestion(ctx context.Context, questionID uint) (*models.AnswerKey, error)
	GetByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.AnswerKey, error)
}

// ArgumentRepository provides lookups for topic groupings.
type ArgumentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Argument, error)
	GetByAssessment(ctx context.Context, assessmentID uint) ([]*models.Argument, error)
}

// UserRepository provides lookups on the aggregated identity view.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
}

// ===== FILTER STRUCTS =====

type AttemptFilters struct {
	Status       *models.AttemptStatus `json:"status"`
	UserID       *string               `json:"user_id"`
	AssessmentID *uint                 `json:"assessment_id"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	SortBy       string                `json:"sort_by"`    // "created_at", "started_at", "submitted_at"
	SortOrder    string                `json:"sort_order"` // "asc", "desc"
}

type AssessmentFilters struct {
	Type      *models.AssessmentType `json:"type"`
	Search    string                 `json:"search"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`
	SortOrder string                 `json:"sort_order"`
}

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Search string           `json:"search"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
