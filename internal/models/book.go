package models

import (
	"time"
)

type Book struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Title           string `json:"title" gorm:"not null;size:255;index"`
	Author          string `json:"author" gorm:"not null;size:255;index"`
	ISBN            string `json:"isbn" gorm:"uniqueIndex;not null;size:32"`
	PublicationYear *int   `json:"publication_year"`

	// Copy accounting. AvailableCopies is owned by the inventory ledger;
	// 0 <= available_copies <= total_copies always holds.
	TotalCopies     int `json:"total_copies" gorm:"not null;default:0"`
	AvailableCopies int `json:"available_copies" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// BorrowedCount is the number of copies currently out on loan.
func (b *Book) BorrowedCount() int {
	return b.TotalCopies - b.AvailableCopies
}
