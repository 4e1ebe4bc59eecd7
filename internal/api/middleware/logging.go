package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// quietPaths are polled too often to log
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// StructuredLogging provides structured logging middleware
func StructuredLogging(logger *slog.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if quietPaths[param.Path] {
			return ""
		}

		requestID, _ := param.Keys["request_id"].(string)
		userID, _ := param.Keys["user_id"].(string)

		level := slog.LevelInfo
		if param.StatusCode >= 500 {
			level = slog.LevelError
		}

		logger.Log(param.Request.Context(), level, "HTTP Request",
			"request_id", requestID,
			"user_id", userID,
			"method", param.Method,
			"path", param.Path,
			"status", param.StatusCode,
			"latency_ms", param.Latency.Milliseconds(),
			"client_ip", param.ClientIP,
			"error", param.ErrorMessage,
		)

		return ""
	})
}
