package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"smartgov-backend/middleware"
	"smartgov-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler serves the conversational assistant endpoints.
type ChatHandler struct {
	chat      *services.ChatService
	users     *services.UserService
	templates *services.PromptTemplateService
}

func NewChatHandler(chat *services.ChatService, users *services.UserService, templates *services.PromptTemplateService) *ChatHandler {
	return &ChatHandler{chat: chat, users: users, templates: templates}
}

type sendMessageRequest struct {
	Message   string `json:"message"`
	SessionID *uint  `json:"session_id"`
	Language  string `json:"language"`
	Category  string `json:"category"`
}

// SendMessage runs one chat exchange. A provider failure still returns 201
// with a degradation string as ai_response.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	user, err := h.users.GetByID(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.chat.SendMessage(c.Request.Context(), user, req.Message, req.SessionID, req.Language, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id":   result.SessionID,
		"user_message": result.UserMessage,
		"ai_response":  result.AIResponse,
		"language":     result.Language,
		"timestamp":    result.Timestamp,
	})
}

// VoiceInput stores an uploaded voice file as a placeholder message. No
// transcription happens here; the response is an acknowledgement only.
func (h *ChatHandler) VoiceInput(c *gin.Context) {
	file, err := c.FormFile("voice_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voice_file is required"})
		return
	}

	sessionID, err := strconv.ParseUint(c.PostForm("session_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	language := c.PostForm("language")

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}
	voiceDir := filepath.Join(mediaDir, "voice_messages")
	if err := os.MkdirAll(voiceDir, 0o755); err != nil {
		respondError(c, err)
		return
	}

	storedPath := filepath.Join(voiceDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		respondError(c, err)
		return
	}

	msg, err := h.chat.SaveVoiceMessage(middleware.UserID(c), uint(sessionID), storedPath, language)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message_id": msg.ID,
		"message":    "Voice message received. Processing...",
	})
}

// Sessions lists the caller's chat sessions, most recently active first.
func (h *ChatHandler) Sessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions(middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// SessionMessages lists a session's messages, oldest first.
func (h *ChatHandler) SessionMessages(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	messages, err := h.chat.SessionMessages(middleware.UserID(c), uint(sessionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

type rateRequest struct {
	LogID  uint `json:"log_id" binding:"required"`
	Rating int  `json:"rating" binding:"required"`
}

// RateResponse records a 1-5 accuracy rating on an interaction log entry.
func (h *ChatHandler) RateResponse(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "log_id and rating are required"})
		return
	}

	logRow, err := h.chat.RateResponse(middleware.UserID(c), req.LogID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logRow)
}

// TemplateByCategory looks up the prompt template for a category.
func (h *ChatHandler) TemplateByCategory(c *gin.Context) {
	template, err := h.templates.GetByCategory(c.Query("category"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found for this category"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}
