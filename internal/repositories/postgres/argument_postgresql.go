package postgres

import (
	"context"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type ArgumentPostgreSQL struct {
	db *gorm.DB
}

func NewArgumentPostgreSQL(db *gorm.DB) repositories.ArgumentRepository {
	return &ArgumentPostgreSQL{db: db}
}

func (a *ArgumentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Argument, error) {
	var argument models.Argument
	if err := a.db.WithContext(ctx).First(&argument, id).Error; err != nil {
		return nil, err
	}
	return &argument, nil
}

func (a *ArgumentPostgreSQL) GetByAssessment(ctx context.Context, assessmentID uint) ([]*models.Argument, error) {
	var arguments []*models.Argument
	if err := a.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("id asc").
		Find(&arguments).Error; err != nil {
		return nil, err
	}
	return arguments, nil
}
