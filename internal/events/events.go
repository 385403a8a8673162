// Package events publishes borrowing lifecycle events. Handlers in other
// services (notifications, analytics) consume these; the core never depends
// on a consumer being present.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Source identifies this service in every event envelope.
	Source = "library-service"

	// Version of the event envelope schema.
	Version = "1.0"
)

// Event types emitted by the borrowing state machine.
const (
	TypeBookBorrowed         = "library.book.borrowed"
	TypeBookReserved         = "library.book.reserved"
	TypeBookReturned         = "library.book.returned"
	TypeReservationCancelled = "library.reservation.cancelled"
)

// Event is the envelope every published message uses.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and timestamp.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// BorrowingEvent is the payload for all borrowing lifecycle events.
type BorrowingEvent struct {
	RecordID  uint       `json:"record_id"`
	StudentID uint       `json:"student_id"`
	BookID    uint       `json:"book_id"`
	Status    string     `json:"status"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}
