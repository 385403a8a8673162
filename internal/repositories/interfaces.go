package repositories

import (
	"context"

	"github.com/campuslib/library-service/internal/models"
)

// ===== FILTERS =====

// BookFilters narrows GET /books listings. Title and Author are
// case-insensitive substring matches; ISBN is exact.
type BookFilters struct {
	Title  string
	Author string
	ISBN   string
}

// RecordFilters narrows borrowing-record listings.
type RecordFilters struct {
	StudentID  *uint
	BookID     *uint
	Status     *models.RecordStatus
	ActiveOnly bool // status in (reserved, borrowed)
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context, filters BookFilters) ([]*models.Book, error)
}

type BorrowingRepository interface {
	Create(ctx context.Context, record *models.BorrowingRecord) error
	Update(ctx context.Context, record *models.BorrowingRecord) error
	GetByID(ctx context.Context, id uint) (*models.BorrowingRecord, error)

	// GetActiveByStudentAndBook returns the single non-terminal record for
	// the pair, or a not-found error. At most one may exist.
	GetActiveByStudentAndBook(ctx context.Context, studentID, bookID uint) (*models.BorrowingRecord, error)

	// CountBorrowedByStudent counts records with status borrowed.
	CountBorrowedByStudent(ctx context.Context, studentID uint) (int64, error)

	// HasActiveByBook reports whether any non-terminal record references
	// the book (delete gating).
	HasActiveByBook(ctx context.Context, bookID uint) (bool, error)

	List(ctx context.Context, filters RecordFilters) ([]*models.BorrowingRecord, error)
}

// Repository aggregates the three table repositories. All state-machine
// writes go through WithTransaction so the read-check-write sequence is
// atomic from the caller's perspective.
type Repository interface {
	Users() UserRepository
	Books() BookRepository
	Borrowings() BorrowingRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
