package errors

import (
	stderrors "errors"

	"lazo-pipeline/internal/app/analysis"
	apperrors "lazo-pipeline/internal/app/errors"
)

// Stable machine-readable codes for entitlement and submission failures
const (
	CodeMissingAudio        = "missing_audio"
	CodeQuotaExhausted      = "quota_exhausted"
	CodePrecisionNotAllowed = "precision_not_allowed"
	CodeUnknownAction       = "unknown_action"
)

// FromDomain converts a domain error into the API error returned to the caller.
// Errors that do not map to a client-facing kind become a generic internal error.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case stderrors.Is(err, apperrors.ErrMissingAudio):
		return &APIError{Kind: KindBadRequest, Message: "Audio file is required", Code: CodeMissingAudio}
	case stderrors.Is(err, apperrors.ErrPrecisionNotAllowed):
		return NewEntitlementError(CodePrecisionNotAllowed, "High precision mode requires the ultra plan")
	case stderrors.Is(err, apperrors.ErrQuotaExhausted):
		return NewEntitlementError(CodeQuotaExhausted, "No credits remaining for this plan")
	case stderrors.Is(err, apperrors.ErrJobNotFound):
		return NewNotFoundError("Session")
	case stderrors.Is(err, apperrors.ErrProfileNotFound):
		return NewNotFoundError("Profile")
	case stderrors.Is(err, analysis.ErrUnknownAction):
		return &APIError{Kind: KindBadRequest, Message: "Unknown action", Code: CodeUnknownAction}
	case apperrors.IsValidationError(err):
		return NewValidationError("Validation failed", map[string]string{"request": err.Error()})
	}

	return NewInternalError("Internal server error")
}
