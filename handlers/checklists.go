package handlers

import (
	"net/http"

	"smartgov-backend/middleware"
	"smartgov-backend/services"

	"github.com/gin-gonic/gin"
)

// ChecklistHandler serves document checklist generation and progress updates.
type ChecklistHandler struct {
	checklists *services.ChecklistService
	users      *services.UserService
}

func NewChecklistHandler(checklists *services.ChecklistService, users *services.UserService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists, users: users}
}

type generateChecklistRequest struct {
	SchemeID uint `json:"scheme_id" binding:"required"`
}

// Generate builds (or rebuilds) the checklist for the caller and a scheme.
func (h *ChecklistHandler) Generate(c *gin.Context) {
	var req generateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheme_id is required"})
		return
	}

	user, err := h.users.GetByID(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	checklist, created, err := h.checklists.Generate(user, req.SchemeID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"message":   "Document checklist generated",
		"checklist": checklist,
	})
}

// List returns all of the caller's checklists.
func (h *ChecklistHandler) List(c *gin.Context) {
	checklists, err := h.checklists.List(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checklists)
}

type updateChecklistRequest struct {
	ChecklistID uint            `json:"checklist_id" binding:"required"`
	Documents   map[string]bool `json:"documents" binding:"required"`
}

// Update overwrites a checklist's document map and recomputes completion.
func (h *ChecklistHandler) Update(c *gin.Context) {
	var req updateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "checklist_id and documents are required"})
		return
	}

	checklist, err := h.checklists.Update(middleware.UserID(c), req.ChecklistID, req.Documents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checklist)
}
