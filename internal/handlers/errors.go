package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-affiliate/internal/apperrors"
)

// statusFor maps a service error kind to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrCycleDetected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a stable error kind and message. Internal failures
// are not echoed back to the caller.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
