package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Owner identifies a participant of the loyalty programme.
// Two owners are the same participant when their emails match.
type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewOwner creates an Owner after trimming and validating its fields.
func NewOwner(name, email string) (Owner, error) {
	owner := Owner{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
	}

	if err := owner.Validate(); err != nil {
		return Owner{}, err
	}

	return owner, nil
}

// Validate checks that the owner has a name and a well-formed email.
func (o Owner) Validate() error {
	if o.Email == "" {
		return NewValidationError("email", "cannot be empty", ErrValidation)
	}
	if err := validate.Var(o.Email, "email"); err != nil {
		return NewValidationError("email", "has invalid format", ErrValidation)
	}
	if o.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrValidation)
	}
	return nil
}
