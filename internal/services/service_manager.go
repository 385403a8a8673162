package services

import (
	"context"

	"github.com/campuslib/library-service/internal/events"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

// DefaultServiceManager holds the concrete services behind the ServiceManager
// interface.
type DefaultServiceManager struct {
	users      UserService
	books      BookService
	borrowings BorrowingService
	reports    ReportService

	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewDefaultServiceManager(
	repo repositories.Repository,
	v *validator.Validator,
	logger utils.Logger,
	publisher events.EventPublisher,
	policy LendingPolicy,
) *DefaultServiceManager {
	borrowings := NewBorrowingService(repo, v, logger, publisher, policy)

	return &DefaultServiceManager{
		users:      NewUserService(repo, v, logger),
		books:      NewBookService(repo, v, logger),
		borrowings: borrowings,
		reports:    NewReportService(borrowings, logger),
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
	}
}

func (m *DefaultServiceManager) Users() UserService           { return m.users }
func (m *DefaultServiceManager) Books() BookService           { return m.books }
func (m *DefaultServiceManager) Borrowings() BorrowingService { return m.borrowings }
func (m *DefaultServiceManager) Reports() ReportService       { return m.reports }

func (m *DefaultServiceManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *DefaultServiceManager) Shutdown(ctx context.Context) error {
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Error("failed to close event publisher", "error", err)
			return err
		}
	}
	return nil
}
