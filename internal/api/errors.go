package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/gecko-recipes/backend/internal/middleware"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

const internalErrorMessage = "internal server error"

// respondError maps err to a status code. Only validation and not-found
// errors reach the client verbatim; anything else is logged and reported as
// a generic 500.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	_ = c.Error(err)
	requestID := middleware.GetRequestID(c)

	var validationErr *types.ValidationError
	var notFoundErr *types.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:     "validation failed",
			RequestID: requestID,
			Details:   validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:     notFoundErr.Error(),
			RequestID: requestID,
		})
	default:
		log.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:     internalErrorMessage,
			RequestID: requestID,
		})
	}
}

// badRequest reports malformed input that never reached validation.
func badRequest(c *gin.Context, log *slog.Logger, field, message string) {
	respondError(c, log, types.NewValidationError(field, message))
}
