package contact

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/folio/pkg/sanitizer"
	"github.com/dmitrymomot/folio/pkg/validator"
)

// Submission is a single contact-form message. It is never stored.
type Submission struct {
	ID      string
	Name    string
	Email   string
	Message string
}

// NewSubmission normalizes raw input and assigns a fresh ID.
// Name and message keep what the visitor typed, markup characters included;
// templates escape them where HTML is produced. The email is kept verbatim so
// Validate judges exactly what was submitted.
func NewSubmission(name, email, message string) Submission {
	return Submission{
		ID:      uuid.NewString(),
		Name:    sanitizer.Line(name),
		Email:   email,
		Message: sanitizer.Text(message),
	}
}

// Validate checks required fields first and the email shape second.
// The returned error wraps ErrMissingFields or ErrInvalidEmail together with
// the validator.ValidationErrors describing the offending fields.
func (s Submission) Validate() error {
	if err := validator.Apply(
		validator.RequiredString("name", s.Name),
		validator.RequiredString("email", s.Email),
		validator.RequiredString("message", s.Message),
	); err != nil {
		return errors.Join(ErrMissingFields, err)
	}

	if err := validator.Apply(validator.Email("email", s.Email)); err != nil {
		return errors.Join(ErrInvalidEmail, err)
	}

	return nil
}
