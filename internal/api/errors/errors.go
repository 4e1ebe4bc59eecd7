package errors

import (
	"fmt"
	"net/http"
)

// ErrorKind selects the HTTP status of an APIError
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindBadRequest         ErrorKind = "bad_request"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
)

// APIError is the error body returned to API callers.
// Code is set when a client needs to branch on the failure, e.g. quota_exhausted.
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// HTTPStatus returns the status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with per-field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Details: fields}
}

func NewNotFoundError(resource string) *APIError {
	return &APIError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewEntitlementError reports a plan or credit refusal under a stable code
func NewEntitlementError(code, message string) *APIError {
	return &APIError{Kind: KindForbidden, Message: message, Code: code}
}

func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}

func NewServiceUnavailableError(message string) *APIError {
	return &APIError{Kind: KindServiceUnavailable, Message: message}
}
