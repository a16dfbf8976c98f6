package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/revisa-edu/assessment-service/internal/cache"
	"github.com/revisa-edu/assessment-service/internal/events"
	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"github.com/revisa-edu/assessment-service/internal/utils"
)

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewReviewService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) ReviewService {
	return &reviewService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheService,
	}
}

// ReviewOpenAnswer records one reviewer verdict on one open answer. The write
// is guarded so exactly one reviewer wins per answer; afterwards the attempt's
// answers are re-scanned and the attempt is finalized once every answered open
// question has a verdict.
func (s *reviewService) ReviewOpenAnswer(ctx context.Context, attemptAnswerID uint, req *ReviewAnswerRequest, reviewerID string) (*ReviewAnswerResponse, error) {
	s.logger.Info("Reviewing open answer",
		"attempt_answer_id", attemptAnswerID,
		"reviewer_id", reviewerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewer, err := s.repo.User().GetByID(ctx, reviewerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}
	if !reviewer.Role.CanReview() {
		return nil, ErrReviewPermissionDenied
	}

	answer, err := s.repo.AttemptAnswer().GetByID(ctx, attemptAnswerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, answer.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.IsSubmitted() {
		return nil, ErrAttemptNotFinished
	}

	question, err := s.repo.Question().GetByID(ctx, answer.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if !question.Type.IsOpen() {
		return nil, ErrReviewNotOpenQuestion
	}

	if answer.IsGraded() || answer.ReviewerID != nil {
		return nil, ErrAnswerAlreadyGraded
	}
	if !answer.IsSubmitted() {
		return nil, ErrAnswerNotSubmitted
	}
	if answer.TextAnswer == nil || *answer.TextAnswer == "" {
		return nil, ErrAnswerEmpty
	}

	now := time.Now()
	if err := answer.Grade(*req.IsCorrect, req.TeacherComment, reviewerID, now); err != nil {
		return nil, ErrAnswerAlreadyGraded
	}

	// Optimistic write: a concurrent reviewer may have graded the same answer
	// between our read and this update. Zero rows means they won.
	applied, err := s.repo.AttemptAnswer().GradeSubmitted(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to grade answer: %w", err)
	}
	if !applied {
		return nil, ErrAnswerAlreadyGraded
	}

	s.publishEvent(ctx, events.NewAnswerReviewedEvent(
		answer.ID, attempt.ID, question.ID, attempt.UserID, reviewerID, *req.IsCorrect, now))

	allReviewed, pending, err := s.finalizeIfComplete(ctx, attempt, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Open answer reviewed",
		"attempt_answer_id", answer.ID,
		"attempt_id", attempt.ID,
		"all_reviewed", allReviewed,
		"pending_review", pending)

	return &ReviewAnswerResponse{
		Answer:                   answer,
		AttemptID:                attempt.ID,
		AttemptStatus:            attempt.Status,
		AllOpenQuestionsReviewed: allReviewed,
		PendingReview:            pending,
	}, nil
}

// finalizeIfComplete re-derives completion from persisted state and, when the
// last open answer has been reviewed, moves the attempt to GRADED with the
// recomputed combined score. The guarded update makes concurrent finalizers
// converge on a single winner; losers just reload the final state.
func (s *reviewService) finalizeIfComplete(ctx context.Context, attempt *models.Attempt, now time.Time) (bool, int, error) {
	bundle, err := loadResultBundle(ctx, s.repo, attempt)
	if err != nil {
		return false, 0, err
	}

	pending := countPendingOpenAnswers(bundle.questions, bundle.answers)
	if pending > 0 {
		return false, pending, nil
	}

	score, ok := CombinedScore(bundle.assessment, attempt, bundle.answers, bundle.questions, bundle.keys)
	if !ok {
		return false, pending, fmt.Errorf("combined score unavailable for attempt %d", attempt.ID)
	}

	finalized, err := s.repo.Attempt().FinalizeIfSubmitted(ctx, attempt.ID, score, now)
	if err != nil {
		return true, 0, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	if finalized {
		attempt.Status = models.AttemptGraded
		attempt.Score = &score
		attempt.GradedAt = &now

		if err := s.cache.Delete(ctx, cache.AttemptResultsKey(attempt.ID)); err != nil {
			s.logger.Warn("Failed to invalidate results cache", "attempt_id", attempt.ID, "error", err)
		}

		s.publishEvent(ctx, events.NewAttemptGradedEvent(
			attempt.ID, bundle.assessment.ID, bundle.assessment.Title, attempt.UserID, now,
			score, score >= float64(bundle.assessment.PassingScore)))

		s.logger.Info("Attempt finalized after review",
			"attempt_id", attempt.ID,
			"score", score)
	} else {
		// A concurrent finalizer got there first; reflect the stored state.
		current, err := s.repo.Attempt().GetByID(ctx, attempt.ID)
		if err == nil {
			*attempt = *current
		}
	}

	return true, 0, nil
}

// ListPendingReviews returns SUBMITTED attempts that still have open answers
// awaiting review, oldest submission first.
func (s *reviewService) ListPendingReviews(ctx context.Context, requesterID string, page, pageSize int) (*PendingReviewsResponse, error) {
	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}
	if !requester.Role.CanReview() {
		return nil, ErrReviewPermissionDenied
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	answers, err := s.repo.AttemptAnswer().ListPendingReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending answers: %w", err)
	}

	grouped, order, err := s.groupPendingByAttempt(ctx, answers)
	if err != nil {
		return nil, err
	}

	total := len(order)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	attempts := make([]PendingReviewAttempt, 0, end-start)
	for _, attemptID := range order[start:end] {
		attempts = append(attempts, *grouped[attemptID])
	}

	return &PendingReviewsResponse{
		Attempts: attempts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// groupPendingByAttempt folds pending answers into one row per attempt,
// keeping only text answers of SUBMITTED attempts. Order preserves the
// oldest-first ordering of the underlying answers.
func (s *reviewService) groupPendingByAttempt(ctx context.Context, answers []*models.AttemptAnswer) (map[uint]*PendingReviewAttempt, []uint, error) {
	grouped := make(map[uint]*PendingReviewAttempt)
	var order []uint

	attemptCache := make(map[uint]*models.Attempt)
	assessmentCache := make(map[uint]*models.Assessment)
	userCache := make(map[string]*models.User)

	for _, answer := range answers {
		if answer.TextAnswer == nil || *answer.TextAnswer == "" {
			continue
		}

		if entry, ok := grouped[answer.AttemptID]; ok {
			entry.PendingCount++
			continue
		}

		attempt, ok := attemptCache[answer.AttemptID]
		if !ok {
			loaded, err := s.repo.Attempt().GetByID(ctx, answer.AttemptID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					continue
				}
				return nil, nil, fmt.Errorf("failed to get attempt: %w", err)
			}
			attempt = loaded
			attemptCache[answer.AttemptID] = attempt
		}
		if !attempt.IsSubmitted() {
			continue
		}

		assessment, ok := assessmentCache[attempt.AssessmentID]
		if !ok {
			loaded, err := s.repo.Assessment().GetByID(ctx, attempt.AssessmentID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					continue
				}
				return nil, nil, fmt.Errorf("failed to get assessment: %w", err)
			}
			assessment = loaded
			assessmentCache[attempt.AssessmentID] = assessment
		}

		entry := &PendingReviewAttempt{
			AttemptID:       attempt.ID,
			AssessmentID:    assessment.ID,
			AssessmentTitle: assessment.Title,
			UserID:          attempt.UserID,
			SubmittedAt:     attempt.SubmittedAt,
			PendingCount:    1,
		}

		user, ok := userCache[attempt.UserID]
		if !ok {
			loaded, err := s.repo.User().GetByID(ctx, attempt.UserID)
			if err == nil {
				user = loaded
				userCache[attempt.UserID] = user
			}
		}
		if user != nil {
			entry.UserName = user.FullName
		}

		grouped[attempt.ID] = entry
		order = append(order, attempt.ID)
	}

	return grouped, order, nil
}

func (s *reviewService) publishEvent(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

// countPendingOpenAnswers counts answered open questions whose answers have
// not yet been graded.
func countPendingOpenAnswers(questions []*models.Question, answers []*models.AttemptAnswer) int {
	answerByQuestion := make(map[uint]*models.AttemptAnswer, len(answers))
	for _, answer := range answers {
		answerByQuestion[answer.QuestionID] = answer
	}
	pending := 0
	for _, question := range questions {
		if !question.Type.IsOpen() {
			continue
		}
		answer := answerByQuestion[question.ID]
		if answer == nil || !answer.HasAnswer() {
			continue
		}
		if !answer.IsGraded() {
			pending++
		}
	}
	return pending
}
