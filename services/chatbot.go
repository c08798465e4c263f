package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

const sessionTitleMaxLen = 50

// hindiSteering is appended to the user message when language == "hi".
const hindiSteering = "\n\n[Please respond in Hindi if possible, with English terms where necessary]"

// ChatService orchestrates one chat exchange: template resolution, grounded
// system prompt, generation call, persistence and interaction logging.
// A provider failure never aborts the exchange; it degrades into a textual
// assistant response.
type ChatService struct {
	db          *gorm.DB
	templates   *PromptTemplateService
	provider    AIProvider
	providerErr error // init failure reason when provider is nil
	breaker     *CircuitBreaker

	// Sends to the same session are serialized so message order and the
	// title-assignment check stay deterministic.
	locksMu      sync.Mutex
	sessionLocks map[uint]*sessionLock
}

// sessionLock is refcounted so the map only holds in-flight sessions.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(db *gorm.DB, templates *PromptTemplateService, provider AIProvider, providerErr error) *ChatService {
	return &ChatService{
		db:           db,
		templates:    templates,
		provider:     provider,
		providerErr:  providerErr,
		breaker:      NewCircuitBreaker("ai-provider", 5, 60*time.Second),
		sessionLocks: make(map[uint]*sessionLock),
	}
}

// SendMessageResult is the response envelope for one exchange.
type SendMessageResult struct {
	SessionID   uint      `json:"session_id"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Language    string    `json:"language"`
	Timestamp   time.Time `json:"timestamp"`
}

// SendMessage runs the full exchange state machine. sessionID nil means a new
// session; a supplied sessionID must belong to the user.
func (s *ChatService) SendMessage(ctx context.Context, user *models.User, message string, sessionID *uint, language, category string) (*SendMessageResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if language == "" {
		language = "en"
	}

	session, err := s.resolveSession(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockSession(session.ID)
	defer unlock()

	// Template is optional: absent category or no match falls back to defaults
	var template *models.PromptTemplate
	if category != "" {
		template, err = s.templates.GetByCategory(category)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	systemMessage := BuildSystemMessage(template, user)

	adjustedMessage := message
	if language == "hi" {
		adjustedMessage = message + hindiSteering
	}

	opts := DefaultGenerationOptions()
	if template != nil {
		opts = GenerationOptions{Temperature: template.Temperature, MaxTokens: template.MaxTokens}
	}

	aiResponse, status, inputTokens, outputTokens, latencyMs := s.askAI(ctx, systemMessage, adjustedMessage, opts)

	var assistantMsg models.ChatMessage
	err = s.db.Transaction(func(tx *gorm.DB) error {
		userMsg := models.ChatMessage{
			SessionID: session.ID,
			UserID:    user.ID,
			Role:      "user",
			Message:   message, // original text, not the language-adjusted one
			Timestamp: time.Now(),
			Language:  language,
		}
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}

		assistantMsg = models.ChatMessage{
			SessionID: session.ID,
			UserID:    user.ID,
			Role:      "assistant",
			Message:   aiResponse, // raw text, including degradation strings
			Timestamp: time.Now(),
			Language:  language,
		}
		if err := tx.Create(&assistantMsg).Error; err != nil {
			return err
		}

		logRow := models.AIInteractionLog{
			UserID:       user.ID,
			UserInput:    message,
			AIResponse:   aiResponse,
			LanguageUsed: language,
			Status:       status,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			LatencyMs:    latencyMs,
			Timestamp:    time.Now(),
		}
		if template != nil {
			logRow.TemplateID = &template.ID
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}

		// First exchange sets the session title, exactly once
		var count int64
		if err := tx.Model(&models.ChatMessage{}).Where("session_id = ?", session.ID).Count(&count).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_at": time.Now()}
		if count == 2 {
			updates["title"] = truncateTitle(message, sessionTitleMaxLen)
		}
		return tx.Model(&models.ChatSession{}).Where("id = ?", session.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist exchange: %w", err)
	}

	return &SendMessageResult{
		SessionID:   session.ID,
		UserMessage: message,
		AIResponse:  aiResponse,
		Language:    language,
		Timestamp:   assistantMsg.Timestamp,
	}, nil
}

// askAI invokes the generation provider under the circuit breaker and converts
// every failure into a degradation response string. Returns (response, status,
// inputTokens, outputTokens, latencyMs); status is "ok" or "degraded".
func (s *ChatService) askAI(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, string, int, int, int) {
	if s.provider == nil {
		if s.providerErr != nil && strings.Contains(s.providerErr.Error(), "not set in environment") {
			return "AI API key not configured. Please contact administrator.", "degraded", 0, 0, 0
		}
		return "AI service not available. Please try again later.", "degraded", 0, 0, 0
	}

	var response string
	var inputTokens, outputTokens int
	start := time.Now()

	err := s.breaker.Call(func() error {
		resp, in, out, err := s.provider.AskLLM(ctx, systemPrompt, userPrompt, opts)
		if err != nil {
			return err
		}
		response = resp
		inputTokens = in
		outputTokens = out
		return nil
	})
	latencyMs := int(time.Since(start).Milliseconds())

	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "AI service not available. Please try again later.", "degraded", 0, 0, latencyMs
		}
		upErr := ClassifyUpstreamError(err)
		log.Printf("[Chat] Generation failed (status %d): %v", upErr.StatusCode, err)
		return "Error communicating with AI service: " + upErr.Message, "degraded", 0, 0, latencyMs
	}

	return response, "ok", inputTokens, outputTokens, latencyMs
}

// SaveVoiceMessage stores an inbound voice attachment as a placeholder user
// message. Transcription is an external collaborator this service tolerates
// the absence of; no AI response is generated here.
func (s *ChatService) SaveVoiceMessage(userID, sessionID uint, storedPath, language string) (*models.ChatMessage, error) {
	session, err := s.resolveSession(userID, &sessionID)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = "en"
	}

	msg := models.ChatMessage{
		SessionID:  session.ID,
		UserID:     userID,
		Role:       "user",
		Message:    "[Voice message received]",
		VoiceInput: storedPath,
		Timestamp:  time.Now(),
		Language:   language,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).Where("id = ?", session.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save voice message: %w", err)
	}
	return &msg, nil
}

// RateResponse sets the accuracy rating on an interaction log entry the user
// owns. Overwrite semantics: re-rating replaces the prior value.
func (s *ChatService) RateResponse(userID, logID uint, rating int) (*models.AIInteractionLog, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var logRow models.AIInteractionLog
	err := s.db.Where("id = ? AND user_id = ?", logID, userID).First(&logRow).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: interaction log %d", ErrNotFound, logID)
	}
	if err != nil {
		return nil, err
	}

	logRow.AccuracyRating = &rating
	if err := s.db.Save(&logRow).Error; err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}
	return &logRow, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (s *ChatService) ListSessions(userID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// SessionMessages returns all messages of a session the user owns, oldest first.
func (s *ChatService) SessionMessages(userID, sessionID uint) ([]models.ChatMessage, error) {
	if _, err := s.resolveSession(userID, &sessionID); err != nil {
		return nil, err
	}

	var messages []models.ChatMessage
	err := s.db.Where("session_id = ?", sessionID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// resolveSession fetches an owned session, or creates a fresh one when id is nil.
func (s *ChatService) resolveSession(userID uint, sessionID *uint) (*models.ChatSession, error) {
	if sessionID != nil {
		var session models.ChatSession
		err := s.db.Where("id = ? AND user_id = ?", *sessionID, userID).First(&session).Error
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: chat session %d", ErrNotFound, *sessionID)
		}
		if err != nil {
			return nil, err
		}
		return &session, nil
	}

	session := models.ChatSession{UserID: userID}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// lockSession serializes sends to one session; sends to different sessions
// never wait on each other. The returned func releases the lock and evicts
// the map entry once the last holder is done.
func (s *ChatService) lockSession(sessionID uint) func() {
	s.locksMu.Lock()
	lock, ok := s.sessionLocks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.sessionLocks[sessionID] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.sessionLocks, sessionID)
		}
		s.locksMu.Unlock()
	}
}

func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
