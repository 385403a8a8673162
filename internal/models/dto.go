package models

// ===== RESPONSE SHAPES =====

// RecordResponse is a borrowing record enriched with related entities where
// the endpoint documents it: book_details on /my_books, plus student_details
// on /borrowed_books.
type RecordResponse struct {
	*BorrowingRecord
	BookDetails    *Book        `json:"book_details,omitempty"`
	StudentDetails *UserSummary `json:"student_details,omitempty"`
}

// RegisterResult is what /register returns. Token is present for students
// only; AlreadyRegistered distinguishes the 200 re-registration path from
// the 201 creation path.
type RegisterResult struct {
	Message           string   `json:"message"`
	UserID            uint     `json:"user_id"`
	Role              UserRole `json:"role,omitempty"`
	Token             string   `json:"token,omitempty"`
	AlreadyRegistered bool     `json:"-"`
}

// LoginResult is what /login returns.
type LoginResult struct {
	Message string   `json:"message"`
	UserID  uint     `json:"user_id"`
	Role    UserRole `json:"role"`
	Token   string   `json:"token,omitempty"`
}
