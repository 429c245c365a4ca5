package handler

import (
	"errors"
	"net/http"

	"jelajah/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy to HTTP statuses in one
// place. Every failed mutation names the failed action so the UI can
// surface a transient notice.
func respondError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": action + " not permitted"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": action + ": not found"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": action + ": already exists"})
	case errors.Is(err, domain.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": action + " failed upstream"})
	default:
		zap.S().Errorw(action+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
