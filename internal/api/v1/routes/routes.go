package routes

import (
	"github.com/gin-gonic/gin"
	"lazo-pipeline/internal/api/middleware"
	"lazo-pipeline/internal/api/v1/handlers"
	"lazo-pipeline/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	SessionService services.SessionService
	MaxAudioBytes  int64
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.Use(middleware.CallerID())

	sessionHandler := handlers.NewSessionHandler(container.SessionService, container.MaxAudioBytes)
	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Submit)
		sessions.GET("/:id", sessionHandler.Get)
	}

	router.GET("/users/:id/plan", sessionHandler.Plan)
	router.POST("/ai-actions", sessionHandler.Action)
}
