package handlers

import (
	"net/http"
	"time"

	"smartgov-backend/middleware"
	"smartgov-backend/services"

	"github.com/gin-gonic/gin"
)

// ReminderHandler serves scheme deadline reminder endpoints.
type ReminderHandler struct {
	reminders *services.ReminderService
}

func NewReminderHandler(reminders *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminders: reminders}
}

type createReminderRequest struct {
	SchemeID     uint      `json:"scheme_id" binding:"required"`
	ReminderDate time.Time `json:"reminder_date" binding:"required"`
	ReminderType string    `json:"reminder_type"`
}

// Create adds a reminder.
func (h *ReminderHandler) Create(c *gin.Context) {
	var req createReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheme_id and reminder_date are required"})
		return
	}

	reminder, err := h.reminders.Create(middleware.UserID(c), req.SchemeID, req.ReminderDate, req.ReminderType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// List returns the caller's active reminders ordered by due date.
func (h *ReminderHandler) List(c *gin.Context) {
	reminders, err := h.reminders.ListActive(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

type markSentRequest struct {
	ReminderID uint `json:"reminder_id" binding:"required"`
}

// MarkSent marks a reminder as sent.
func (h *ReminderHandler) MarkSent(c *gin.Context) {
	var req markSentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reminder_id is required"})
		return
	}

	reminder, err := h.reminders.MarkSent(middleware.UserID(c), req.ReminderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}
