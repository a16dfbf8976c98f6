package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// GetByID returns a user profile. Users can read themselves; reading someone
// else requires a reviewer role.
func (s *userService) GetByID(ctx context.Context, id string, requesterID string) (*models.User, error) {
	if id != requesterID {
		requester, err := s.getUser(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if !requester.Role.CanReview() {
			return nil, ErrInsufficientPermissions
		}
	}

	return s.getUser(ctx, id)
}

// List returns users matching the filters. Reviewer roles only.
func (s *userService) List(ctx context.Context, filters repositories.UserFilters, requesterID string) ([]*models.User, int64, error) {
	requester, err := s.getUser(ctx, requesterID)
	if err != nil {
		return nil, 0, err
	}
	if !requester.Role.CanReview() {
		return nil, 0, ErrInsufficientPermissions
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
