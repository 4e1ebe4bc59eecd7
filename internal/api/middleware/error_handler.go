package middleware

import (
	stderrors "errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"lazo-pipeline/internal/api/errors"
)

// ErrorHandler recovers handler panics into a sanitized 500 body
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if apiErr, ok := recovered.(*errors.APIError); ok {
			writeError(c, apiErr)
			return
		}
		logger.Error("Recovered from panic",
			"recovered", recovered,
			"request_id", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		writeError(c, errors.NewInternalError("Internal server error"))
	})
}

// HandleError writes err as an API error body and aborts the chain.
// Errors that are not APIErrors go through FromDomain, so raw causes never reach the caller.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = errors.FromDomain(err)
	}
	writeError(c, apiErr)
}

func writeError(c *gin.Context, apiErr *errors.APIError) {
	body := *apiErr
	body.RequestID = c.GetString("request_id")
	c.AbortWithStatusJSON(body.HTTPStatus(), &body)
}
