package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/loyalty-api/internal/api/shared"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrOwnerNotRegistered):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrOwnerAlreadyRegistered):
		return http.StatusConflict

	case errors.Is(err, domain.ErrInsufficientPoints):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, domain.ErrOwnerNotRegistered):
		return "Owner not registered"

	case errors.Is(err, domain.ErrOwnerAlreadyRegistered):
		return "Owner already registered"

	case errors.Is(err, domain.ErrInsufficientPoints):
		var pointsErr *domain.PointsError
		if errors.As(err, &pointsErr) {
			// The message is one of two fixed strings and carries no owner data.
			return pointsErr.Message
		}
		return "insufficient points"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, domain.ErrValidation):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a user-friendly message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "too small"
	case "lte":
		return "too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the sanitized error response for err and logs the
// details. A non-empty message overrides the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a decode or validation failure.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := "Invalid request format"
	switch {
	case errors.Is(err, shared.ErrEmptyBody):
		message = GetSafeErrorMessage(err)
	default:
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			message = SanitizeValidationError(err)
		}
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}
