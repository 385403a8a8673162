package validator

import (
	"github.com/campuslib/library-service/internal/models"
)

// RegisterRequest is the /register payload.
type RegisterRequest struct {
	Username string          `json:"username" validate:"required,username"`
	Password string          `json:"password" validate:"required,min=1,max=255"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
}

// LoginRequest is the /login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BookCreateRequest is the librarian POST /books payload.
type BookCreateRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	Author          string `json:"author" validate:"required,max=255"`
	ISBN            string `json:"isbn" validate:"required,max=32"`
	PublicationYear *int   `json:"publication_year" validate:"omitempty,publication_year"`
	TotalCopies     int    `json:"total_copies" validate:"min=0"`
}

// BookUpdateRequest is the librarian PUT /books/:id payload. Nil fields are
// left untouched.
type BookUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=255"`
	Author          *string `json:"author" validate:"omitempty,max=255"`
	ISBN            *string `json:"isbn" validate:"omitempty,max=32"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,publication_year"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,min=0"`
}
