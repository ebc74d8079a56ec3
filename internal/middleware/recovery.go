package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// Recovery turns a panic into a generic 500 response. The panic value is
// logged, never sent to the client.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				panicRecoveries.Inc()
				log.ErrorContext(c.Request.Context(), "panic recovered",
					"error", fmt.Sprint(err),
					"request_id", GetRequestID(c),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error:     "internal server error",
					RequestID: GetRequestID(c),
				})
			}
		}()
		c.Next()
	}
}
