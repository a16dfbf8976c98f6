package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportAttemptResults renders the result sheet of a finished attempt as an
// xlsx workbook. Reviewer roles only.
func (s *exportService) ExportAttemptResults(ctx context.Context, attemptID uint, requesterID string) ([]byte, string, error) {
	requester, err := s.repo.User().GetByID(ctx, requesterID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to get requester: %w", err)
	}
	if !requester.Role.CanReview() {
		return nil, "", NewPermissionError(requesterID, attemptID, "attempt", "export_results", "reviewer role required")
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrAttemptNotFound
		}
		return nil, "", fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.IsInProgress() {
		return nil, "", ErrAttemptNotFinished
	}

	bundle, err := loadResultBundle(ctx, s.repo, attempt)
	if err != nil {
		return nil, "", err
	}

	results := ComputeResults(bundle.assessment, attempt, bundle.answers, bundle.questions, bundle.keys, bundle.arguments)
	details := buildAnswerDetails(bundle)

	data, err := renderResultsWorkbook(attempt, bundle.assessment, results, details)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("attempt_%d_results.xlsx", attempt.ID)
	s.logger.Info("Exported attempt results", "attempt_id", attempt.ID, "requester_id", requesterID)
	return data, filename, nil
}

func renderResultsWorkbook(attempt *models.Attempt, assessment *models.Assessment, results *AttemptResults, details []AnswerDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	summary := [][]interface{}{
		{"Assessment", assessment.Title},
		{"Type", string(assessment.Type)},
		{"Student", attempt.UserID},
		{"Status", string(attempt.Status)},
		{"Answered", fmt.Sprintf("%d/%d", results.AnsweredQuestions, results.TotalQuestions)},
		{"Time spent (min)", results.TimeSpentMinutes},
	}
	if results.ScorePercentage != nil {
		summary = append(summary,
			[]interface{}{"Score", *results.ScorePercentage},
			[]interface{}{"Passed", *results.Passed})
	} else {
		summary = append(summary, []interface{}{"Pending review", results.PendingReview})
	}

	row := 1
	for _, pair := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &pair); err != nil {
			return nil, err
		}
		row++
	}

	row++
	header := []interface{}{"Question", "Type", "Topic", "Selected", "Correct answer", "Is correct", "Text answer", "Comment"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return nil, err
	}
	row++

	for _, detail := range details {
		line := []interface{}{
			detail.QuestionText,
			string(detail.QuestionType),
			strPtrOrEmpty(detail.ArgumentTitle),
			strPtrOrEmpty(detail.SelectedOptionText),
			strPtrOrEmpty(detail.CorrectOptionText),
			boolPtrOrEmpty(detail.IsCorrect),
			strPtrOrEmpty(detail.TextAnswer),
			strPtrOrEmpty(detail.TeacherComment),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func strPtrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolPtrOrEmpty(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "yes"
	}
	return "no"
}
