package validator

import (
	"testing"

	"github.com/campuslib/library-service/internal/models"
)

func TestValidateStatusTransition(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		current models.RecordStatus
		next    models.RecordStatus
		allowed bool
	}{
		{"reserved to borrowed", models.RecordReserved, models.RecordBorrowed, true},
		{"reserved to cancelled", models.RecordReserved, models.RecordCancelled, true},
		{"reserved to returned", models.RecordReserved, models.RecordReturned, true},
		{"borrowed to returned", models.RecordBorrowed, models.RecordReturned, true},
		{"borrowed to cancelled", models.RecordBorrowed, models.RecordCancelled, false},
		{"borrowed to reserved", models.RecordBorrowed, models.RecordReserved, false},
		{"returned is terminal", models.RecordReturned, models.RecordBorrowed, false},
		{"cancelled is terminal", models.RecordCancelled, models.RecordReserved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateStatusTransition(tt.current, tt.next)
			if tt.allowed && errs != nil {
				t.Errorf("transition rejected: %v", errs)
			}
			if !tt.allowed && errs == nil {
				t.Error("transition allowed, want rejection")
			}
		})
	}
}

func TestValidateRegisterRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"valid student", RegisterRequest{Username: "alice", Password: "pw", Role: models.RoleStudent}, false},
		{"valid librarian", RegisterRequest{Username: "lib", Password: "pw", Role: models.RoleLibrarian}, false},
		{"bad role", RegisterRequest{Username: "alice", Password: "pw", Role: "admin"}, true},
		{"missing password", RegisterRequest{Username: "alice", Role: models.RoleStudent}, true},
		{"whitespace username", RegisterRequest{Username: " alice ", Password: "pw", Role: models.RoleStudent}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateBookCreateRequest(t *testing.T) {
	v := New()

	badYear := 1200
	goodYear := 1979

	tests := []struct {
		name    string
		req     BookCreateRequest
		wantErr bool
	}{
		{"valid", BookCreateRequest{Title: "T", Author: "A", ISBN: "i-1", PublicationYear: &goodYear, TotalCopies: 1}, false},
		{"no year is fine", BookCreateRequest{Title: "T", Author: "A", ISBN: "i-1", TotalCopies: 1}, false},
		{"implausible year", BookCreateRequest{Title: "T", Author: "A", ISBN: "i-1", PublicationYear: &badYear, TotalCopies: 1}, true},
		{"missing title", BookCreateRequest{Author: "A", ISBN: "i-1", TotalCopies: 1}, true},
		{"negative copies", BookCreateRequest{Title: "T", Author: "A", ISBN: "i-1", TotalCopies: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
