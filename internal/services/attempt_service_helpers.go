package services

import (
	"context"
	"fmt"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
)

// resultBundle is everything result assembly needs, loaded in one place so
// the results view and the exporter share the same data.
type resultBundle struct {
	assessment *models.Assessment
	questions  []*models.Question
	options    []*models.QuestionOption
	keys       []*models.AnswerKey
	arguments  []*models.Argument
	answers    []*models.AttemptAnswer
}

func loadResultBundle(ctx context.Context, repo repositories.Repository, attempt *models.Attempt) (*resultBundle, error) {
	assessment, err := repo.Assessment().GetByID(ctx, attempt.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	questions, err := repo.Question().GetByAssessment(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	ids := questionIDs(questions)
	options, err := repo.Question().GetOptionsByQuestionIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get question options: %w", err)
	}
	keys, err := repo.AnswerKey().GetByQuestionIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer keys: %w", err)
	}

	arguments, err := repo.Argument().GetByAssessment(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get arguments: %w", err)
	}

	answers, err := repo.AttemptAnswer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	return &resultBundle{
		assessment: assessment,
		questions:  questions,
		options:    options,
		keys:       keys,
		arguments:  arguments,
		answers:    answers,
	}, nil
}

func (s *attemptService) assembleResults(ctx context.Context, attempt *models.Attempt) (*AttemptResultsResponse, error) {
	bundle, err := loadResultBundle(ctx, s.repo, attempt)
	if err != nil {
		return nil, err
	}

	results := ComputeResults(bundle.assessment, attempt, bundle.answers, bundle.questions, bundle.keys, bundle.arguments)

	return &AttemptResultsResponse{
		Attempt:    newAttemptSummary(attempt),
		Assessment: newAssessmentSummary(bundle.assessment),
		Results:    results,
		Answers:    buildAnswerDetails(bundle),
	}, nil
}

func newAttemptSummary(attempt *models.Attempt) AttemptSummary {
	return AttemptSummary{
		ID:          attempt.ID,
		Status:      attempt.Status,
		Score:       attempt.Score,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.SubmittedAt,
		GradedAt:    attempt.GradedAt,
		UserID:      attempt.UserID,
	}
}

func newAssessmentSummary(assessment *models.Assessment) AssessmentSummary {
	return AssessmentSummary{
		ID:           assessment.ID,
		Slug:         assessment.Slug,
		Title:        assessment.Title,
		Type:         assessment.Type,
		PassingScore: assessment.PassingScore,
	}
}

// buildAnswerDetails produces one detail row per question, in question order.
// Unanswered questions still get a row so callers can render the full sheet.
func buildAnswerDetails(bundle *resultBundle) []AnswerDetail {
	answerByQuestion := make(map[uint]*models.AttemptAnswer, len(bundle.answers))
	for _, answer := range bundle.answers {
		answerByQuestion[answer.QuestionID] = answer
	}
	keyByQuestion := make(map[uint]*models.AnswerKey, len(bundle.keys))
	for _, key := range bundle.keys {
		keyByQuestion[key.QuestionID] = key
	}
	optionByID := make(map[uint]*models.QuestionOption, len(bundle.options))
	for _, option := range bundle.options {
		optionByID[option.ID] = option
	}
	argumentTitles := make(map[uint]string, len(bundle.arguments))
	for _, argument := range bundle.arguments {
		argumentTitles[argument.ID] = argument.Title
	}

	details := make([]AnswerDetail, 0, len(bundle.questions))
	for _, question := range bundle.questions {
		detail := AnswerDetail{
			QuestionID:   question.ID,
			QuestionText: question.Text,
			QuestionType: question.Type,
			ArgumentID:   question.ArgumentID,
			Status:       models.AttemptInProgress,
		}
		if question.ArgumentID != nil {
			if title, ok := argumentTitles[*question.ArgumentID]; ok {
				detail.ArgumentTitle = &title
			}
		}

		answer := answerByQuestion[question.ID]
		if answer != nil {
			detail.Status = answer.Status
			detail.SelectedOptionID = answer.SelectedOptionID
			detail.TextAnswer = answer.TextAnswer
			detail.TeacherComment = answer.TeacherComment
			detail.ReviewerID = answer.ReviewerID
			detail.IsCorrect = answer.IsCorrect
			if answer.IsGraded() {
				reviewedAt := answer.UpdatedAt
				detail.ReviewedAt = &reviewedAt
			}
			if answer.SelectedOptionID != nil {
				if option, ok := optionByID[*answer.SelectedOptionID]; ok {
					detail.SelectedOptionText = &option.Text
				}
			}
		}

		if question.Type.IsMultipleChoice() {
			if key, ok := keyByQuestion[question.ID]; ok {
				correctID := key.CorrectOptionID
				detail.CorrectOptionID = &correctID
				detail.Explanation = key.Explanation
				if option, ok := optionByID[key.CorrectOptionID]; ok {
					detail.CorrectOptionText = &option.Text
				}
				if answer != nil && answer.SelectedOptionID != nil {
					correct := *answer.SelectedOptionID == key.CorrectOptionID
					detail.IsCorrect = &correct
				}
			}
		}

		details = append(details, detail)
	}
	return details
}
