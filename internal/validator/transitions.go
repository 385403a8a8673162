package validator

import (
	"fmt"

	"github.com/campuslib/library-service/internal/models"
)

// recordTransitions is the closed transition table for borrowing records.
// Terminal states admit nothing.
var recordTransitions = map[models.RecordStatus][]models.RecordStatus{
	models.RecordReserved:  {models.RecordBorrowed, models.RecordCancelled, models.RecordReturned},
	models.RecordBorrowed:  {models.RecordReturned},
	models.RecordReturned:  {},
	models.RecordCancelled: {},
}

// ValidateStatusTransition checks a borrowing-record status move against the
// transition table.
func (v *Validator) ValidateStatusTransition(current, next models.RecordStatus) ValidationErrors {
	for _, allowed := range recordTransitions[current] {
		if next == allowed {
			return nil
		}
	}

	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}
