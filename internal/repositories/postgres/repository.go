package postgres

import (
	"context"

	"github.com/revisa-edu/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

// Repository is the gorm-backed implementation of repositories.Repository.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{db: db}
}

func (r *Repository) Attempt() repositories.AttemptRepository {
	return NewAttemptPostgreSQL(r.db)
}

func (r *Repository) AttemptAnswer() repositories.AttemptAnswerRepository {
	return NewAttemptAnswerPostgreSQL(r.db)
}

func (r *Repository) Assessment() repositories.AssessmentRepository {
	return NewAssessmentPostgreSQL(r.db)
}

func (r *Repository) Question() repositories.QuestionRepository {
	return NewQuestionPostgreSQL(r.db)
}

func (r *Repository) AnswerKey() repositories.AnswerKeyRepository {
	return NewAnswerKeyPostgreSQL(r.db)
}

func (r *Repository) Argument() repositories.ArgumentRepository {
	return NewArgumentPostgreSQL(r.db)
}

func (r *Repository) User() repositories.UserRepository {
	return NewUserPostgreSQL(r.db)
}

// WithTx runs fn with a repository bound to a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// applyPaginationAndSort applies the shared limit/offset/order conventions.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
