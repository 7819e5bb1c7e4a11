package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/service"
)

// respondError maps service errors to HTTP responses. Store and unexpected
// failures are logged and answered with a generic message.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var vErr *service.ValidationError
	var pErr *service.PersistenceError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ValidationError", "field": vErr.Field, "message": vErr.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "NotAuthorized", "message": "authentication required"})
	case errors.Is(err, service.ErrFoodNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "food not found"})
	case errors.Is(err, service.ErrExportUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unavailable", "message": err.Error()})
	case errors.As(err, &pErr):
		log.Error("persistence failure", "op", pErr.Op, "path", c.FullPath(), "error", pErr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PersistenceError", "message": "Could not save your changes. Please try again."})
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "InternalError", "message": "Something went wrong. Please try again."})
	}
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "ValidationError", "field": field, "message": field + " " + message})
}
