package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleLibrarian UserRole = "librarian"
)

// ValidRole reports whether the given role is one of the closed set.
func ValidRole(r UserRole) bool {
	return r == RoleStudent || r == RoleLibrarian
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;index"`

	// Opaque bearer token, students only. Assigned on first registration
	// and reused across re-registrations; empty for librarians.
	Token string `json:"-" gorm:"size:64;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserSummary is the student payload embedded in librarian-facing record
// listings. It never carries credentials.
type UserSummary struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}
