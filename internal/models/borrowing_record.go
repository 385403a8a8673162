package models

import (
	"time"
)

type RecordStatus string

const (
	RecordReserved  RecordStatus = "reserved"
	RecordBorrowed  RecordStatus = "borrowed"
	RecordReturned  RecordStatus = "returned"
	RecordCancelled RecordStatus = "cancelled"
)

// ValidRecordStatus reports whether s is a member of the closed status set.
// The storage boundary rejects anything else.
func ValidRecordStatus(s RecordStatus) bool {
	switch s {
	case RecordReserved, RecordBorrowed, RecordReturned, RecordCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s RecordStatus) IsTerminal() bool {
	return s == RecordReturned || s == RecordCancelled
}

// BorrowingRecord tracks one student's claim on one book through the
// reserved/borrowed/returned/cancelled lifecycle. At most one non-terminal
// record may exist per (student, book) pair.
type BorrowingRecord struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;index"`
	BookID    uint `json:"book_id" gorm:"not null;index"`

	// BorrowDate and DueDate are set when the record enters the borrowed
	// state; they stay nil for records that were only ever reserved.
	BorrowDate *time.Time `json:"borrow_date"`
	DueDate    *time.Time `json:"due_date"`

	// ReturnDate is set only on an actual return. ClosedAt is set whenever
	// the record reaches a terminal state, including cancellation.
	ReturnDate *time.Time `json:"return_date"`
	ClosedAt   *time.Time `json:"closed_at"`

	Status RecordStatus `json:"status" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BorrowingRecord) TableName() string {
	return "borrowing_records"
}

// IsActive reports whether the record still blocks a new claim on the
// same (student, book) pair.
func (r *BorrowingRecord) IsActive() bool {
	return !r.Status.IsTerminal()
}
