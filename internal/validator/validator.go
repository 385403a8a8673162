package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campuslib/library-service/internal/models"
)

// Validator wraps go-playground struct validation plus the custom rules the
// request DTOs use.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate runs struct validation and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	// Role must be a member of the closed set.
	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(models.UserRole(fl.Field().String()))
	})

	// Publication year: anything from movable type to next year.
	v.validate.RegisterValidation("publication_year", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= 1450 && year <= time.Now().Year()+1
	})

	// Username: no surrounding whitespace, reasonable length.
	v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		trimmed := strings.TrimSpace(name)
		return name == trimmed && len(trimmed) >= 1 && len(trimmed) <= 100
	})
}

// ===== VALIDATION ERROR TYPES =====

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// ToValidationErrors converts go-playground errors into the API shape.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "struct"}}
	}

	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "user_role":
		return "must be 'student' or 'librarian'"
	case "publication_year":
		return "is not a plausible publication year"
	case "username":
		return "must be 1-100 characters without surrounding whitespace"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
