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

const resultsCacheTTL = 15 * time.Minute

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewAttemptService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		cache:     cacheService,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, userID string) (*AttemptResponse, error) {
	s.logger.Info("Starting assessment attempt",
		"assessment_id", req.AssessmentID,
		"user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, req.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	// An active attempt is resumed, never duplicated.
	existing, err := s.repo.Attempt().GetActiveByUserAndAssessment(ctx, userID, req.AssessmentID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}
	if existing != nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", existing.ID)
		return &AttemptResponse{Attempt: existing, Resumed: true}, nil
	}

	now := time.Now()
	attempt := &models.Attempt{
		Status:       models.AttemptInProgress,
		StartedAt:    now,
		UserID:       userID,
		AssessmentID: req.AssessmentID,
	}
	if assessment.TimeLimitMinutes != nil {
		expires := now.Add(time.Duration(*assessment.TimeLimitMinutes) * time.Minute)
		attempt.TimeLimitExpiresAt = &expires
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publishEvent(ctx, events.NewAttemptStartedEvent(
		attempt.ID, assessment.ID, assessment.Title, userID, attempt.StartedAt, assessment.TimeLimitMinutes))

	s.logger.Info("Assessment attempt started",
		"attempt_id", attempt.ID,
		"assessment_id", req.AssessmentID,
		"user_id", userID)

	return &AttemptResponse{Attempt: attempt}, nil
}

func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest, userID string) (*models.AttemptAnswer, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if (req.SelectedOptionID == nil) == (req.TextAnswer == nil) {
		return nil, NewValidationError("answer", "exactly one of selected_option_id and text_answer must be set", nil)
	}

	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID, "submit_answer")
	if err != nil {
		return nil, err
	}
	if !attempt.IsInProgress() {
		return nil, ErrAttemptNotActive
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.AssessmentID != attempt.AssessmentID {
		return nil, ErrQuestionNotFound
	}

	if question.Type.IsMultipleChoice() && req.SelectedOptionID == nil {
		return nil, ErrAnswerWrongType
	}
	if question.Type.IsOpen() && req.TextAnswer == nil {
		return nil, ErrAnswerWrongType
	}

	now := time.Now()
	answer, err := s.repo.AttemptAnswer().GetByAttemptAndQuestion(ctx, attemptID, req.QuestionID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	if answer == nil {
		answer = &models.AttemptAnswer{
			Status:     models.AttemptInProgress,
			AttemptID:  attemptID,
			QuestionID: req.QuestionID,
		}
		if err := s.applyAnswerContent(answer, question, req, now); err != nil {
			return nil, err
		}
		if err := s.repo.AttemptAnswer().Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to create answer: %w", err)
		}
		return answer, nil
	}

	if err := s.applyAnswerContent(answer, question, req, now); err != nil {
		return nil, err
	}
	if err := s.repo.AttemptAnswer().Update(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to update answer: %w", err)
	}

	return answer, nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uint, userID string) (*AttemptResponse, error) {
	s.logger.Info("Submitting attempt", "attempt_id", attemptID, "user_id", userID)

	attempt, err := s.getOwnedAttempt(ctx, attemptID, userID, "submit")
	if err != nil {
		return nil, err
	}
	if !attempt.IsInProgress() {
		return nil, ErrAttemptAlreadySubmitted
	}

	now := time.Now()
	if attempt.IsExpired(now) {
		return nil, ErrAttemptTimeExpired
	}

	answers, err := s.repo.AttemptAnswer().GetByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}
	if !hasAnyAnswer(answers) {
		return nil, ErrAttemptNoAnswers
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	questions, err := s.repo.Question().GetByAssessment(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	keys, err := s.repo.AnswerKey().GetByQuestionIDs(ctx, questionIDs(questions))
	if err != nil {
		return nil, fmt.Errorf("failed to get answer keys: %w", err)
	}

	openCount := countAnsweredOpenQuestions(questions, answers)

	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		if err := attempt.Submit(now); err != nil {
			return ErrAttemptAlreadySubmitted
		}
		if err := tx.AttemptAnswer().SubmitAllInProgress(ctx, attemptID, now); err != nil {
			return fmt.Errorf("failed to submit answers: %w", err)
		}

		// Pure multiple-choice assessments are graded on the spot. Anything
		// with answered open questions waits for review.
		if openCount == 0 {
			for _, answer := range answers {
				answer.Status = models.AttemptSubmitted
			}
			score, ok := CombinedScore(assessment, attempt, answers, questions, keys)
			if !ok {
				return fmt.Errorf("combined score unavailable for attempt %d", attemptID)
			}
			if err := attempt.Grade(score, now); err != nil {
				return fmt.Errorf("failed to grade attempt: %w", err)
			}
		}

		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewAttemptSubmittedEvent(
		attempt.ID, assessment.ID, assessment.Title, userID, now, attempt.Score, openCount > 0))

	if attempt.IsGraded() {
		s.publishEvent(ctx, events.NewAttemptGradedEvent(
			attempt.ID, assessment.ID, assessment.Title, userID, now,
			*attempt.Score, *attempt.Score >= float64(assessment.PassingScore)))
	} else {
		s.publishEvent(ctx, events.NewManualGradingRequiredEvent(
			attempt.ID, assessment.ID, assessment.Title, userID, now, openCount))
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"status", attempt.Status,
		"pending_review", openCount)

	return &AttemptResponse{Attempt: attempt}, nil
}

// ===== LIST / RESULTS =====

func (s *attemptService) List(ctx context.Context, filters repositories.AttemptFilters, requesterID string) ([]*models.Attempt, int64, error) {
	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("failed to get requester: %w", err)
	}

	// Students only ever see their own attempts.
	if !requester.Role.CanReview() {
		filters.UserID = &requesterID
	}

	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

func (s *attemptService) GetResults(ctx context.Context, attemptID uint, requesterID string) (*AttemptResultsResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if err := s.checkResultsAccess(ctx, attempt, requesterID); err != nil {
		return nil, err
	}
	if attempt.IsInProgress() {
		return nil, ErrAttemptNotFinished
	}

	// Graded attempts are immutable, so their assembled results can be cached.
	cacheKey := cache.AttemptResultsKey(attemptID)
	if attempt.IsGraded() {
		var cached AttemptResultsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	response, err := s.assembleResults(ctx, attempt)
	if err != nil {
		return nil, err
	}

	if attempt.IsGraded() {
		if err := s.cache.Set(ctx, cacheKey, response, resultsCacheTTL); err != nil {
			s.logger.Warn("Failed to cache attempt results", "attempt_id", attemptID, "error", err)
		}
	}

	return response, nil
}

// ===== HELPERS =====

func (s *attemptService) getOwnedAttempt(ctx context.Context, attemptID uint, userID, action string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, NewPermissionError(userID, attemptID, "attempt", action, "not owned by user")
	}
	return attempt, nil
}

func (s *attemptService) checkResultsAccess(ctx context.Context, attempt *models.Attempt, requesterID string) error {
	if attempt.UserID == requesterID {
		return nil
	}
	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get requester: %w", err)
	}
	if !requester.Role.CanReview() {
		return NewPermissionError(requesterID, attempt.ID, "attempt", "read_results", "not owner or reviewer")
	}
	return nil
}

func (s *attemptService) applyAnswerContent(answer *models.AttemptAnswer, question *models.Question, req *SubmitAnswerRequest, now time.Time) error {
	if question.Type.IsMultipleChoice() {
		if err := answer.SelectOption(*req.SelectedOptionID, now); err != nil {
			return ErrAnswerNotSubmitted
		}
		return nil
	}
	if *req.TextAnswer == "" {
		return ErrAnswerEmpty
	}
	if err := answer.AnswerText(*req.TextAnswer, now); err != nil {
		return ErrAnswerNotSubmitted
	}
	return nil
}

func (s *attemptService) publishEvent(ctx context.Context, event *events.NotificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func hasAnyAnswer(answers []*models.AttemptAnswer) bool {
	for _, answer := range answers {
		if answer.HasAnswer() {
			return true
		}
	}
	return false
}

func questionIDs(questions []*models.Question) []uint {
	ids := make([]uint, len(questions))
	for i, question := range questions {
		ids[i] = question.ID
	}
	return ids
}

func countAnsweredOpenQuestions(questions []*models.Question, answers []*models.AttemptAnswer) int {
	answerByQuestion := make(map[uint]*models.AttemptAnswer, len(answers))
	for _, answer := range answers {
		answerByQuestion[answer.QuestionID] = answer
	}
	count := 0
	for _, question := range questions {
		if !question.Type.IsOpen() {
			continue
		}
		if answer := answerByQuestion[question.ID]; answer != nil && answer.HasAnswer() {
			count++
		}
	}
	return count
}
