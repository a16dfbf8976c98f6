package postgres

import (
	"context"
	"time"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptAnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptAnswerPostgreSQL(db *gorm.DB) repositories.AttemptAnswerRepository {
	return &AttemptAnswerPostgreSQL{db: db}
}

func (a *AttemptAnswerPostgreSQL) Create(ctx context.Context, answer *models.AttemptAnswer) error {
	return a.db.WithContext(ctx).Create(answer).Error
}

func (a *AttemptAnswerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AttemptAnswer, error) {
	var answer models.AttemptAnswer
	if err := a.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AttemptAnswerPostgreSQL) Update(ctx context.Context, answer *models.AttemptAnswer) error {
	return a.db.WithContext(ctx).Save(answer).Error
}

func (a *AttemptAnswerPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error) {
	var answers []*models.AttemptAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at asc").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AttemptAnswerPostgreSQL) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.AttemptAnswer, error) {
	var answer models.AttemptAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AttemptAnswerPostgreSQL) SubmitAllInProgress(ctx context.Context, attemptID uint, now time.Time) error {
	return a.db.WithContext(ctx).
		Model(&models.AttemptAnswer{}).
		Where("attempt_id = ? AND status = ?", attemptID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":     models.AttemptSubmitted,
			"updated_at": now,
		}).Error
}

// GradeSubmitted writes the verdict only while the row is still SUBMITTED and
// unreviewed. The WHERE clause is the check-and-set that keeps two reviewers
// from both grading the same answer.
func (a *AttemptAnswerPostgreSQL) GradeSubmitted(ctx context.Context, answer *models.AttemptAnswer) (bool, error) {
	result := a.db.WithContext(ctx).
		Model(&models.AttemptAnswer{}).
		Where("id = ? AND status = ? AND reviewer_id IS NULL", answer.ID, models.AttemptSubmitted).
		Updates(map[string]interface{}{
			"status":          answer.Status,
			"is_correct":      answer.IsCorrect,
			"teacher_comment": answer.TeacherComment,
			"reviewer_id":     answer.ReviewerID,
			"updated_at":      answer.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (a *AttemptAnswerPostgreSQL) ListPendingReview(ctx context.Context) ([]*models.AttemptAnswer, error) {
	var answers []*models.AttemptAnswer
	if err := a.db.WithContext(ctx).
		Where("status = ?", models.AttemptSubmitted).
		Order("created_at asc").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
