package handlers

import (
	"errors"
	"log"
	"net/http"

	"smartgov-backend/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Anything outside the
// known taxonomy is a 500 with a generic body; details go to the log only.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrIncompleteProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User profile incomplete. Please update age, occupation, and state."})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
