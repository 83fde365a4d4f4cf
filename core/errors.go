package core

import (
	"errors"
	"strings"
)

// Auth store errors
var (
	ErrUserExists         = errors.New("an account for this email already exists") // 409 Conflict
	ErrUserNotFound       = errors.New("no account exists for this email")         // 404 Not Found
	ErrNotVerified        = errors.New("email address is not verified yet")        // 403 Forbidden
	ErrInvalidCredentials = errors.New("password is incorrect")                    // 401 Unauthorized
)

// Record errors
var (
	ErrNotFound        = errors.New("record not found")  // 404
	ErrTripNotFound    = errors.New("trip not found")    // 404
	ErrProfileNotFound = errors.New("profile not found") // 404
)

// Validation errors (client input)
var (
	ErrValidation   = errors.New("validation failed")     // 400
	ErrInvalidEmail = errors.New("invalid email format")  // 400
	ErrInvalidBody  = errors.New("invalid request body")  // 400
	ErrInvalidImage = errors.New("invalid image payload") // 400
)

// Config errors (server-side configuration)
var (
	ErrUnconfigured          = errors.New("document store is not configured") // 503
	ErrUnsupportedBackend    = errors.New("unsupported document store scheme")
	ErrHTTPAdapterRequired   = errors.New("http adapter is required")
	ErrStorageRequired       = errors.New("document provider is required")
	ErrUnknownCollection     = errors.New("unknown collection")
	ErrUnknownPasswordHasher = errors.New("unknown password hasher")
)

// ValidationError lists the request fields that failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
