package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"studyreserve/internal/domain/reservation"
	"studyreserve/internal/domain/shared/civil"
	"studyreserve/internal/domain/spaces"
)

// respondError maps engine error kinds to HTTP statuses. Every kind stays
// distinguishable; nothing is coerced into a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrNotFound), errors.Is(err, spaces.ErrSpaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidInterval),
		errors.Is(err, civil.ErrInvalidInterval),
		errors.Is(err, civil.ErrInvalidDate),
		errors.Is(err, civil.ErrInvalidTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrSlotUnavailable),
		errors.Is(err, reservation.ErrAlreadyCancelled),
		errors.Is(err, reservation.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrWriteConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
