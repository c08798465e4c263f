package handlers

import (
	"net/http"
	"strconv"

	"smartgov-backend/middleware"
	"smartgov-backend/services"

	"github.com/gin-gonic/gin"
)

// SchemeHandler serves the scheme catalog, personalization and interaction
// tracking endpoints.
type SchemeHandler struct {
	catalog *services.CatalogService
	matcher *services.MatcherService
	history *services.HistoryService
	users   *services.UserService
}

func NewSchemeHandler(catalog *services.CatalogService, matcher *services.MatcherService, history *services.HistoryService, users *services.UserService) *SchemeHandler {
	return &SchemeHandler{catalog: catalog, matcher: matcher, history: history, users: users}
}

// List returns the catalog with optional category/state query filters.
func (h *SchemeHandler) List(c *gin.Context) {
	schemes, err := h.catalog.List(c.Query("category"), c.Query("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemes)
}

// Get returns one scheme by id.
func (h *SchemeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scheme id"})
		return
	}

	scheme, err := h.catalog.Get(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scheme)
}

// Personalized returns schemes matching the caller's profile.
func (h *SchemeHandler) Personalized(c *gin.Context) {
	user, err := h.users.GetByID(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	schemes, err := h.matcher.MatchSchemes(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Personalized schemes based on your profile",
		"count":   len(schemes),
		"schemes": schemes,
	})
}

type schemeActionRequest struct {
	SchemeID uint `json:"scheme_id" binding:"required"`
}

// TrackView records an explicit scheme view (no dedup, unlike personalization).
func (h *SchemeHandler) TrackView(c *gin.Context) {
	var req schemeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheme_id is required"})
		return
	}

	if _, err := h.history.Record(middleware.UserID(c), req.SchemeID, "viewed"); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheme view tracked"})
}

// SaveScheme bookmarks a scheme.
func (h *SchemeHandler) SaveScheme(c *gin.Context) {
	var req schemeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheme_id is required"})
		return
	}

	created, err := h.history.SaveScheme(middleware.UserID(c), req.SchemeID)
	if err != nil {
		respondError(c, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Scheme saved"})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Scheme already saved"})
	}
}

// SavedSchemes lists the caller's bookmarks.
func (h *SchemeHandler) SavedSchemes(c *gin.Context) {
	saved, err := h.history.SavedSchemes(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// UserHistory lists the caller's interaction events, optionally filtered by action.
func (h *SchemeHandler) UserHistory(c *gin.Context) {
	events, err := h.history.Query(middleware.UserID(c), c.Query("action"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// AppliedSchemes lists the caller's applied events.
func (h *SchemeHandler) AppliedSchemes(c *gin.Context) {
	events, err := h.history.Query(middleware.UserID(c), "applied")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
