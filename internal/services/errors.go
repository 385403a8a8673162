package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the borrowing state machine and book catalogue. The
// message text is part of the API contract; handlers surface it verbatim.
//
//nolint:staticcheck // contract strings are capitalized sentences
var (
	ErrBookNotFound        = errors.New("Book not found")
	ErrRecordNotFound      = errors.New("Borrowing record not found")
	ErrReservationNotFound = errors.New("Reservation record not found or does not belong to you")

	ErrNoCopiesAvailable = errors.New("No copies of this book are currently available")
	ErrAlreadyBorrowed   = errors.New("You have already borrowed this book")
	ErrAlreadyActive     = errors.New("You have already borrowed or reserved this book")
	ErrNotReserved       = errors.New("Only reserved books can be cancelled")
	ErrRecordNotActive   = errors.New("Book is not currently borrowed or reserved")

	ErrDuplicateISBN        = errors.New("Book with this ISBN already exists")
	ErrBookHasActiveRecords = errors.New("Cannot delete book: active borrowing or reservation records exist")
	ErrReduceBelowBorrowed  = errors.New("Cannot reduce total copies below currently borrowed copies")

	ErrLibrarianExists    = errors.New("Librarian already registered")
	ErrInvalidCredentials = errors.New("Invalid username or password")

	// ErrAssociatedBookMissing is an internal inconsistency (a record
	// referencing a book that no longer exists), not a caller mistake.
	ErrAssociatedBookMissing = errors.New("Associated book not found")
)

// LimitExceededError is returned when a student is at the borrow cap. The
// limit is configurable, so the message is built per instance.
type LimitExceededError struct {
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("You have reached the maximum limit of %d borrowed books", e.Limit)
}
