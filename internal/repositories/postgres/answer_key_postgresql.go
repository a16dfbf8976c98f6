package postgres

import (
	"context"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerKeyPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerKeyPostgreSQL(db *gorm.DB) repositories.AnswerKeyRepository {
	return &AnswerKeyPostgreSQL{db: db}
}

func (a *AnswerKeyPostgreSQL) GetByQuestion(ctx context.Context, questionID uint) (*models.AnswerKey, error) {
	var key models.AnswerKey
	if err := a.db.WithContext(ctx).Where("question_id = ?", questionID).First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func (a *AnswerKeyPostgreSQL) GetByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.AnswerKey, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var keys []*models.AnswerKey
	if err := a.db.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
