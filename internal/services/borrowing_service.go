package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campuslib/library-service/internal/events"
	"github.com/campuslib/library-service/internal/models"
	"github.com/campuslib/library-service/internal/repositories"
	"github.com/campuslib/library-service/internal/utils"
	"github.com/campuslib/library-service/internal/validator"
)

type borrowingService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    utils.Logger
	publisher events.EventPublisher
	ledger    Ledger
	policy    LendingPolicy

	// now is swappable in tests for deterministic due dates.
	now func() time.Time
}

func NewBorrowingService(
	repo repositories.Repository,
	v *validator.Validator,
	logger utils.Logger,
	publisher events.EventPublisher,
	policy LendingPolicy,
) BorrowingService {
	return &borrowingService{
		repo:      repo,
		validator: v,
		logger:    logger,
		publisher: publisher,
		policy:    policy,
		now:       time.Now,
	}
}

// Borrow lends a copy to the student. If the student holds a reservation on
// the book, that record is promoted to borrowed in place; otherwise a fresh
// record is created. Either way a copy comes off the shelf now, because
// reservations never held one.
func (s *borrowingService) Borrow(ctx context.Context, studentID, bookID uint) (*BorrowResult, error) {
	var result *BorrowResult

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		book, err := tx.Books().GetByID(ctx, bookID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookNotFound
			}
			return fmt.Errorf("failed to get book: %w", err)
		}

		if err := s.ledger.CheckAvailable(book); err != nil {
			return err
		}

		borrowed, err := tx.Borrowings().CountBorrowedByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("failed to count borrowed books: %w", err)
		}
		if borrowed >= int64(s.policy.MaxBorrowedBooks) {
			return &LimitExceededError{Limit: s.policy.MaxBorrowedBooks}
		}

		existing, err := tx.Borrowings().GetActiveByStudentAndBook(ctx, studentID, bookID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up active record: %w", err)
		}

		now := s.now()
		due := ComputeDueDate(now, s.policy.LoanPeriodWeeks)

		if existing != nil {
			if existing.Status == models.RecordBorrowed {
				return ErrAlreadyBorrowed
			}
			if verr := s.validator.ValidateStatusTransition(existing.Status, models.RecordBorrowed); verr != nil {
				return verr
			}

			existing.Status = models.RecordBorrowed
			existing.BorrowDate = &now
			existing.DueDate = &due

			if err := s.ledger.DecrementAvailable(book); err != nil {
				return err
			}
			if err := tx.Borrowings().Update(ctx, existing); err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}
			if err := tx.Books().Update(ctx, book); err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}

			result = &BorrowResult{Record: existing, FromReservation: true}
			return nil
		}

		record := &models.BorrowingRecord{
			StudentID:  studentID,
			BookID:     bookID,
			BorrowDate: &now,
			DueDate:    &due,
			Status:     models.RecordBorrowed,
		}

		if err := s.ledger.DecrementAvailable(book); err != nil {
			return err
		}
		if err := tx.Borrowings().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}
		if err := tx.Books().Update(ctx, book); err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}

		result = &BorrowResult{Record: record}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book borrowed",
		"record_id", result.Record.ID,
		"student_id", studentID,
		"book_id", bookID,
		"from_reservation", result.FromReservation,
	)
	s.publishRecordEvent(ctx, events.TypeBookBorrowed, result.Record)

	return result, nil
}

// Reserve registers the student's intent to collect the book. No copy is
// held back; availability is only checked and decremented at collection.
func (s *borrowingService) Reserve(ctx context.Context, studentID, bookID uint) (*models.BorrowingRecord, error) {
	var record *models.BorrowingRecord

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Books().GetByID(ctx, bookID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrBookNotFound
			}
			return fmt.Errorf("failed to get book: %w", err)
		}

		existing, err := tx.Borrowings().GetActiveByStudentAndBook(ctx, studentID, bookID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up active record: %w", err)
		}
		if existing != nil {
			return ErrAlreadyActive
		}

		record = &models.BorrowingRecord{
			StudentID: studentID,
			BookID:    bookID,
			Status:    models.RecordReserved,
		}
		if err := tx.Borrowings().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book reserved", "record_id", record.ID, "student_id", studentID, "book_id", bookID)
	s.publishRecordEvent(ctx, events.TypeBookReserved, record)

	return record, nil
}

// CancelReservation closes a reservation owned by the student. Nothing
// returns to the shelf because reservations never took anything off it.
func (s *borrowingService) CancelReservation(ctx context.Context, studentID, recordID uint) (*models.BorrowingRecord, error) {
	var record *models.BorrowingRecord

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		found, err := tx.Borrowings().GetByID(ctx, recordID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("failed to get record: %w", err)
		}
		if found.StudentID != studentID {
			return ErrReservationNotFound
		}
		if found.Status != models.RecordReserved {
			return ErrNotReserved
		}
		if verr := s.validator.ValidateStatusTransition(found.Status, models.RecordCancelled); verr != nil {
			return verr
		}

		now := s.now()
		found.Status = models.RecordCancelled
		found.ClosedAt = &now

		if err := tx.Borrowings().Update(ctx, found); err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		record = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled", "record_id", record.ID, "student_id", studentID)
	s.publishRecordEvent(ctx, events.TypeReservationCancelled, record)

	return record, nil
}

// Return closes an active record. A copy goes back on the shelf only if one
// ever came off, i.e. the record was actually borrowed at some point; a
// returned reservation just closes.
func (s *borrowingService) Return(ctx context.Context, recordID uint) (*models.BorrowingRecord, error) {
	var record *models.BorrowingRecord

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		found, err := tx.Borrowings().GetByID(ctx, recordID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrRecordNotFound
			}
			return fmt.Errorf("failed to get record: %w", err)
		}
		if found.Status.IsTerminal() {
			return ErrRecordNotActive
		}
		if verr := s.validator.ValidateStatusTransition(found.Status, models.RecordReturned); verr != nil {
			return verr
		}

		book, err := tx.Books().GetByID(ctx, found.BookID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAssociatedBookMissing
			}
			return fmt.Errorf("failed to get book: %w", err)
		}

		now := s.now()
		found.Status = models.RecordReturned
		found.ReturnDate = &now
		found.ClosedAt = &now

		if found.BorrowDate != nil {
			s.ledger.IncrementAvailable(book)
			if err := tx.Books().Update(ctx, book); err != nil {
				return fmt.Errorf("failed to update book: %w", err)
			}
		}
		if err := tx.Borrowings().Update(ctx, found); err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		record = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book returned", "record_id", record.ID, "book_id", record.BookID)
	s.publishRecordEvent(ctx, events.TypeBookReturned, record)

	return record, nil
}

func (s *borrowingService) MyBooks(ctx context.Context, studentID uint) ([]*models.RecordResponse, error) {
	records, err := s.repo.Borrowings().List(ctx, repositories.RecordFilters{
		StudentID:  &studentID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return s.enrich(ctx, records, false)
}

func (s *borrowingService) ListActive(ctx context.Context) ([]*models.RecordResponse, error) {
	records, err := s.repo.Borrowings().List(ctx, repositories.RecordFilters{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return s.enrich(ctx, records, true)
}

// enrich attaches book details, and student details when withStudents is
// set. Records pointing at deleted entities are logged and skipped rather
// than failing the whole listing.
func (s *borrowingService) enrich(ctx context.Context, records []*models.BorrowingRecord, withStudents bool) ([]*models.RecordResponse, error) {
	out := make([]*models.RecordResponse, 0, len(records))

	for _, record := range records {
		book, err := s.repo.Books().GetByID(ctx, record.BookID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				s.logger.Warn("record references missing book", "record_id", record.ID, "book_id", record.BookID)
				continue
			}
			return nil, fmt.Errorf("failed to get book: %w", err)
		}

		resp := &models.RecordResponse{BorrowingRecord: record, BookDetails: book}

		if withStudents {
			student, err := s.repo.Users().GetByID(ctx, record.StudentID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					s.logger.Warn("record references missing student", "record_id", record.ID, "student_id", record.StudentID)
					continue
				}
				return nil, fmt.Errorf("failed to get student: %w", err)
			}
			resp.StudentDetails = student.Summary()
		}

		out = append(out, resp)
	}
	return out, nil
}

// publishRecordEvent emits a lifecycle event after the transaction has
// committed. Publishing is best effort; a broker outage must not undo a
// state change that already happened.
func (s *borrowingService) publishRecordEvent(ctx context.Context, eventType string, record *models.BorrowingRecord) {
	if s.publisher == nil {
		return
	}

	event := events.NewEvent(eventType, events.BorrowingEvent{
		RecordID:  record.ID,
		StudentID: record.StudentID,
		BookID:    record.BookID,
		Status:    string(record.Status),
		DueDate:   record.DueDate,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "type", eventType, "record_id", record.ID, "error", err)
	}
}
