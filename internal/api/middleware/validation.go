package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"lazo-pipeline/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds a JSON body and validates both struct tags and domain rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	return bindAndValidate(c, req, binding.JSON, "invalid JSON format")
}

// ValidateForm binds the non-file fields of a multipart form
func ValidateForm(c *gin.Context, req interface{}) error {
	return bindAndValidate(c, req, binding.FormMultipart, "invalid multipart form")
}

func bindAndValidate(c *gin.Context, req interface{}, b binding.Binding, malformed string) error {
	if err := c.ShouldBindWith(req, b); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.NewValidationError("Validation failed", map[string]string{"request": malformed})
		}
		return errors.NewValidationError("Validation failed", fieldErrors(validationErrs))
	}

	if validator, ok := req.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func fieldErrors(validationErrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(validationErrs))
	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())

		switch fieldError.Tag() {
		case "required":
			fields[field] = "is required"
		case "min":
			fields[field] = "is too small"
		case "max":
			fields[field] = "is too large"
		case "oneof":
			fields[field] = "must be one of " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
		default:
			fields[field] = "is invalid"
		}
	}
	return fields
}
