package services

import (
	"log/slog"

	"github.com/revisa-edu/assessment-service/internal/cache"
	"github.com/revisa-edu/assessment-service/internal/events"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"github.com/revisa-edu/assessment-service/internal/utils"
)

// ServiceManager bundles all domain services behind a single dependency for
// the HTTP layer.
type ServiceManager interface {
	Attempt() AttemptService
	Review() ReviewService
	User() UserService
	Export() ExportService
}

type serviceManager struct {
	attempt AttemptService
	review  ReviewService
	user    UserService
	export  ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
) ServiceManager {
	return &serviceManager{
		attempt: NewAttemptService(repo, logger, validator, publisher, cacheService),
		review:  NewReviewService(repo, logger, validator, publisher, cacheService),
		user:    NewUserService(repo, logger),
		export:  NewExportService(repo, logger),
	}
}

func (m *serviceManager) Attempt() AttemptService { return m.attempt }
func (m *serviceManager) Review() ReviewService   { return m.review }
func (m *serviceManager) User() UserService       { return m.user }
func (m *serviceManager) Export() ExportService   { return m.export }
