// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrOwnerAlreadyRegistered is returned when an owner's email is already
	// present in the operator's registry.
	ErrOwnerAlreadyRegistered = errors.New("owner already registered")

	// ErrOwnerNotRegistered is returned by any per-owner operation that
	// references an email the operator does not know.
	ErrOwnerNotRegistered = errors.New("owner not registered")

	// ErrInsufficientPoints is returned when a points spend exceeds the card
	// balance or asks for a zero or negative amount.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrInvalidCardState is returned when a card is rebuilt from persisted
	// values that break the card invariants.
	ErrInvalidCardState = errors.New("invalid card state")
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Messages carried by PointsError.
const (
	msgInvalidPointsToUse = "invalid number of points to use"
	msgInsufficientPoints = "insufficient points"
)

// PointsError is returned when a card cannot pay out the requested points.
// It always unwraps to ErrInsufficientPoints; the message distinguishes a
// negative request from one the balance cannot cover.
type PointsError struct {
	Requested int
	Available int
	Message   string
}

// Error implements the error interface for PointsError.
func (e *PointsError) Error() string {
	return e.Message
}

// Unwrap returns ErrInsufficientPoints so callers can match with errors.Is.
func (e *PointsError) Unwrap() error {
	return ErrInsufficientPoints
}
