package services

import (
	"context"
	"io"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/validator"
)

// Request DTOs live with the validator so the validation tags stay next to
// the rules that interpret them; the aliases keep service signatures local.
type (
	RegisterRequest   = validator.RegisterRequest
	LoginRequest      = validator.LoginRequest
	BookCreateRequest = validator.BookCreateRequest
	BookUpdateRequest = validator.BookUpdateRequest
)

// LendingPolicy carries the configurable borrowing rules.
type LendingPolicy struct {
	MaxBorrowedBooks int
	LoanPeriodWeeks  int
}

// BorrowResult distinguishes a fresh borrow from a reservation pickup: a
// pickup reuses the reservation's record and responds 200 instead of 201.
type BorrowResult struct {
	Record          *models.BorrowingRecord
	FromReservation bool
}

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.RegisterResult, error)
	Login(ctx context.Context, req *LoginRequest) (*models.LoginResult, error)
}

type BookService interface {
	Create(ctx context.Context, req *BookCreateRequest) (*models.Book, error)
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, filters repositories.BookFilters) ([]*models.Book, error)
	Update(ctx context.Context, id uint, req *BookUpdateRequest) (*models.Book, error)
	Delete(ctx context.Context, id uint) error
}

type BorrowingService interface {
	Borrow(ctx context.Context, studentID, bookID uint) (*BorrowResult, error)
	Reserve(ctx context.Context, studentID, bookID uint) (*models.BorrowingRecord, error)
	CancelReservation(ctx context.Context, studentID, recordID uint) (*models.BorrowingRecord, error)
	Return(ctx context.Context, recordID uint) (*models.BorrowingRecord, error)

	// MyBooks lists a student's active records with book details attached.
	MyBooks(ctx context.Context, studentID uint) ([]*models.RecordResponse, error)

	// ListActive lists every active record with book and student details.
	ListActive(ctx context.Context) ([]*models.RecordResponse, error)
}

type ReportService interface {
	// WriteActiveRecordsReport streams an xlsx snapshot of the active
	// borrowings to w.
	WriteActiveRecordsReport(ctx context.Context, w io.Writer) error
}

// ServiceManager wires the service layer together.
type ServiceManager interface {
	Users() UserService
	Books() BookService
	Borrowings() BorrowingService
	Reports() ReportService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
