package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/gecko-recipes/backend/internal/middleware"
)

// HealthFunc reports whether a dependency is reachable.
type HealthFunc func(ctx context.Context) error

// HealthCheck returns 200 while check succeeds and 503 otherwise.
func HealthCheck(check HealthFunc, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := check(c.Request.Context()); err != nil {
			log.WarnContext(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, recipes *RecipeHandler, check HealthFunc, log *slog.Logger) {
	router.GET("/health", HealthCheck(check, log))
	router.GET("/metrics", middleware.MetricsHandler())
	recipes.RegisterRoutes(router)
}
