package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
)

func TestTransactionRollback(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	book := &models.Book{Title: "T", Author: "A", ISBN: "i-1", TotalCopies: 3, AvailableCopies: 3}
	if err := repo.Books().Create(ctx, book); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		b, err := tx.Books().GetByID(ctx, book.ID)
		if err != nil {
			return err
		}
		b.AvailableCopies = 0
		if err := tx.Books().Update(ctx, b); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v, want boom", err)
	}

	// The failed transaction must leave no trace.
	got, err := repo.Books().GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AvailableCopies != 3 {
		t.Fatalf("available = %d after rollback, want 3", got.AvailableCopies)
	}
}

func TestTransactionCommit(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Books().Create(ctx, &models.Book{Title: "T", Author: "A", ISBN: "i-1", TotalCopies: 1, AvailableCopies: 1})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	books, err := repo.Books().List(ctx, repositories.BookFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1", len(books))
	}
}

func TestGetActiveByStudentAndBook(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	closed := &models.BorrowingRecord{StudentID: 1, BookID: 1, Status: models.RecordReturned}
	if err := repo.Borrowings().Create(ctx, closed); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Terminal records do not block the pair.
	if _, err := repo.Borrowings().GetActiveByStudentAndBook(ctx, 1, 1); !repositories.IsNotFoundError(err) {
		t.Fatalf("got %v, want not-found", err)
	}

	active := &models.BorrowingRecord{StudentID: 1, BookID: 1, Status: models.RecordReserved}
	if err := repo.Borrowings().Create(ctx, active); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Borrowings().GetActiveByStudentAndBook(ctx, 1, 1)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if got.ID != active.ID {
		t.Fatalf("got record %d, want %d", got.ID, active.ID)
	}
}

func TestCountBorrowedByStudent(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	records := []*models.BorrowingRecord{
		{StudentID: 1, BookID: 1, Status: models.RecordBorrowed},
		{StudentID: 1, BookID: 2, Status: models.RecordBorrowed},
		{StudentID: 1, BookID: 3, Status: models.RecordReserved}, // not counted
		{StudentID: 2, BookID: 1, Status: models.RecordBorrowed}, // other student
	}
	for _, rec := range records {
		if err := repo.Borrowings().Create(ctx, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	count, err := repo.Borrowings().CountBorrowedByStudent(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	err := repo.Borrowings().Create(ctx, &models.BorrowingRecord{StudentID: 1, BookID: 1, Status: "lost"})
	if !errors.Is(err, repositories.ErrInvalidStatus) {
		t.Fatalf("got %v, want ErrInvalidStatus", err)
	}
}

func TestReturnedCopiesAreIsolated(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "x", Role: models.RoleStudent}
	if err := repo.Users().Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Mutating the returned copy must not touch the stored row.
	got, err := repo.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Username = "mallory"

	again, err := repo.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Username != "alice" {
		t.Fatalf("stored row mutated through returned copy: %q", again.Username)
	}
}
