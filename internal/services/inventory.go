package services

import (
	"github.com/campuslib/library-service/internal/models"
)

// Ledger owns book copy-count arithmetic. Every mutation of
// available_copies/total_copies in the system goes through it, which keeps
// 0 <= available <= total true everywhere.
type Ledger struct{}

// CheckAvailable reports whether a copy can be lent right now.
func (Ledger) CheckAvailable(book *models.Book) error {
	if book.AvailableCopies <= 0 {
		return ErrNoCopiesAvailable
	}
	return nil
}

// DecrementAvailable takes one copy off the shelf.
func (Ledger) DecrementAvailable(book *models.Book) error {
	if book.AvailableCopies <= 0 {
		return ErrNoCopiesAvailable
	}
	book.AvailableCopies--
	return nil
}

// IncrementAvailable puts one copy back. The count is capped at total_copies
// so a double return cannot overshoot the shelf.
func (Ledger) IncrementAvailable(book *models.Book) {
	if book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
}

// AdjustTotalCopies resizes the stock. Copies currently out with students are
// untouched, so the available count moves by the same delta as the total.
func (Ledger) AdjustTotalCopies(book *models.Book, newTotal int) error {
	borrowed := book.TotalCopies - book.AvailableCopies
	if newTotal < borrowed {
		return ErrReduceBelowBorrowed
	}
	book.AvailableCopies += newTotal - book.TotalCopies
	book.TotalCopies = newTotal
	return nil
}
