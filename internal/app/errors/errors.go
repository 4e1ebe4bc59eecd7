package errors

import (
	"fmt"
	"strings"
)

// Common error types
var (
	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidConfig = New("invalid configuration")

	// Provider errors
	ErrProviderNotFound = New("provider not found")
	ErrBackendNotRouted = New("no backend routed")

	// Submission errors
	ErrMissingAudio        = New("audio file is required")
	ErrQuotaExhausted      = New("quota exhausted")
	ErrPrecisionNotAllowed = New("high precision mode not available for plan")

	// Store errors
	ErrJobNotFound      = New("job not found")
	ErrJobNotProcessing = New("job already in terminal state")
	ErrProfileNotFound  = New("profile not found")
	ErrQueryFailed      = New("query failed")
	ErrUpdateFailed     = New("update failed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf("%s is invalid: %s", field, reason)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Newf("%s not found: %s", itemType, identifier)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid")
}
