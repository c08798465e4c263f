package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"smartgov-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider is a controllable AIProvider test double.
type fakeProvider struct {
	response string
	err      error

	lastSystemPrompt string
	lastUserPrompt   string
	lastOpts         GenerationOptions
	calls            int
}

func (f *fakeProvider) AskLLM(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, int, int, error) {
	f.calls++
	f.lastSystemPrompt = systemPrompt
	f.lastUserPrompt = userPrompt
	f.lastOpts = opts
	if f.err != nil {
		return "", 0, 0, f.err
	}
	return f.response, 12, 34, nil
}

func (f *fakeProvider) GetProviderName() string { return "fake" }
func (f *fakeProvider) GetModelName() string    { return "fake-model" }

// blockingProvider parks inside AskLLM until released, to observe how many
// calls are in flight at once.
type blockingProvider struct {
	inFlight chan struct{}
	release  chan struct{}
}

func (b *blockingProvider) AskLLM(ctx context.Context, systemPrompt, userPrompt string, opts GenerationOptions) (string, int, int, error) {
	b.inFlight <- struct{}{}
	<-b.release
	return "ok", 1, 1, nil
}

func (b *blockingProvider) GetProviderName() string { return "blocking" }
func (b *blockingProvider) GetModelName() string    { return "blocking-model" }

func newChatService(db *gorm.DB, provider AIProvider, providerErr error) *ChatService {
	return NewChatService(db, NewPromptTemplateService(db), provider, providerErr)
}

func TestSendMessageCreatesSessionAndPersistsExchange(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{response: "Here are some schemes for farmers."}
	svc := newChatService(db, provider, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	result, err := svc.SendMessage(context.Background(), user, "What schemes can I apply for?", nil, "en", "")
	require.NoError(t, err)
	assert.NotZero(t, result.SessionID)
	assert.Equal(t, "What schemes can I apply for?", result.UserMessage)
	assert.Equal(t, "Here are some schemes for farmers.", result.AIResponse)
	assert.Equal(t, "en", result.Language)

	var messages []models.ChatMessage
	require.NoError(t, db.Where("session_id = ?", result.SessionID).Order("id ASC").Find(&messages).Error)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "What schemes can I apply for?", messages[0].Message)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, "Here are some schemes for farmers.", messages[1].Message)

	var logRow models.AIInteractionLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&logRow).Error)
	assert.Equal(t, "ok", logRow.Status)
	assert.Equal(t, 12, logRow.InputTokens)
	assert.Equal(t, 34, logRow.OutputTokens)

	// System prompt carries the profile context
	assert.Contains(t, provider.lastSystemPrompt, "Age: 30")
	assert.Contains(t, provider.lastSystemPrompt, "Occupation: farmer")
	assert.Contains(t, provider.lastSystemPrompt, "State: Punjab")
}

func TestSendMessageReusesExistingSession(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	first, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)

	second, err := svc.SendMessage(context.Background(), user, "follow up", &first.SessionID, "en", "")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	var count int64
	require.NoError(t, db.Model(&models.ChatSession{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendMessageSetsTitleOnFirstExchangeOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	long := strings.Repeat("pension eligibility ", 5) // 100 chars
	first, err := svc.SendMessage(context.Background(), user, long, nil, "en", "")
	require.NoError(t, err)

	var session models.ChatSession
	require.NoError(t, db.First(&session, first.SessionID).Error)
	require.NotNil(t, session.Title)
	assert.Len(t, []rune(*session.Title), 50)
	assert.Equal(t, long[:50], *session.Title)

	// Second exchange does not retitle
	_, err = svc.SendMessage(context.Background(), user, "a different question entirely", &first.SessionID, "en", "")
	require.NoError(t, err)
	require.NoError(t, db.First(&session, first.SessionID).Error)
	assert.Equal(t, long[:50], *session.Title)
}

func TestSendMessageShortTitleKeptWhole(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	result, err := svc.SendMessage(context.Background(), user, "short question", nil, "en", "")
	require.NoError(t, err)

	var session models.ChatSession
	require.NoError(t, db.First(&session, result.SessionID).Error)
	require.NotNil(t, session.Title)
	assert.Equal(t, "short question", *session.Title)
}

func TestSendMessageEmptyMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	_, err := svc.SendMessage(context.Background(), user, "   ", nil, "en", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendMessageForeignSession(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	owner := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	other := newTestUser(t, db, intPtr(40), strPtr("teacher"), strPtr("Delhi"))

	first, err := svc.SendMessage(context.Background(), owner, "hello", nil, "en", "")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), other, "hijack", &first.SessionID, "en", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendMessageHindiSteering(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{response: "ok"}
	svc := newChatService(db, provider, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	result, err := svc.SendMessage(context.Background(), user, "mujhe yojana batao", nil, "hi", "")
	require.NoError(t, err)

	// Provider sees the steered prompt, persistence keeps the original text
	assert.Equal(t, "mujhe yojana batao"+hindiSteering, provider.lastUserPrompt)
	assert.Equal(t, "mujhe yojana batao", result.UserMessage)

	var userMsg models.ChatMessage
	require.NoError(t, db.Where("session_id = ? AND role = ?", result.SessionID, "user").First(&userMsg).Error)
	assert.Equal(t, "mujhe yojana batao", userMsg.Message)
	assert.Equal(t, "hi", userMsg.Language)
}

func TestSendMessageTemplateOptionsApplied(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{response: "ok"}
	svc := newChatService(db, provider, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	template := models.PromptTemplate{
		Name:               "agriculture-help",
		Category:           "agriculture",
		SystemInstructions: "Focus on agricultural schemes.",
		Temperature:        0.2,
		MaxTokens:          800,
	}
	require.NoError(t, db.Create(&template).Error)

	_, err := svc.SendMessage(context.Background(), user, "crop insurance?", nil, "en", "agriculture")
	require.NoError(t, err)

	assert.Equal(t, float32(0.2), provider.lastOpts.Temperature)
	assert.Equal(t, 800, provider.lastOpts.MaxTokens)
	assert.True(t, strings.HasPrefix(provider.lastSystemPrompt, "Focus on agricultural schemes."))

	var logRow models.AIInteractionLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&logRow).Error)
	require.NotNil(t, logRow.TemplateID)
	assert.Equal(t, template.ID, *logRow.TemplateID)
}

func TestSendMessageUnknownCategoryFallsBackToDefaults(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{response: "ok"}
	svc := newChatService(db, provider, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	_, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "no-such-category")
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerationOptions(), provider.lastOpts)
}

func TestSendMessageProviderFailureDegrades(t *testing.T) {
	db := newTestDB(t)
	provider := &fakeProvider{err: errors.New("request timed out")}
	svc := newChatService(db, provider, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	result, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.AIResponse, "Error communicating with AI service: "))

	// Both messages still persisted, log marked degraded
	var messages []models.ChatMessage
	require.NoError(t, db.Where("session_id = ?", result.SessionID).Find(&messages).Error)
	assert.Len(t, messages, 2)

	var logRow models.AIInteractionLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&logRow).Error)
	assert.Equal(t, "degraded", logRow.Status)
}

func TestSendMessageNoProvider(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	t.Run("missing API key", func(t *testing.T) {
		svc := newChatService(db, nil, errors.New("OPENROUTER_API_KEY is not set in environment"))
		result, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
		require.NoError(t, err)
		assert.Equal(t, "AI API key not configured. Please contact administrator.", result.AIResponse)
	})

	t.Run("other init failure", func(t *testing.T) {
		svc := newChatService(db, nil, errors.New("unknown AI provider 'bogus'"))
		result, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
		require.NoError(t, err)
		assert.Equal(t, "AI service not available. Please try again later.", result.AIResponse)
	})
}

func TestRateResponse(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	other := newTestUser(t, db, intPtr(40), strPtr("teacher"), strPtr("Delhi"))

	_, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)

	var logRow models.AIInteractionLog
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&logRow).Error)

	t.Run("valid rating", func(t *testing.T) {
		rated, err := svc.RateResponse(user.ID, logRow.ID, 4)
		require.NoError(t, err)
		require.NotNil(t, rated.AccuracyRating)
		assert.Equal(t, 4, *rated.AccuracyRating)
	})

	t.Run("re-rating overwrites", func(t *testing.T) {
		rated, err := svc.RateResponse(user.ID, logRow.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, *rated.AccuracyRating)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := svc.RateResponse(user.ID, logRow.ID, 0)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.RateResponse(user.ID, logRow.ID, 6)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("foreign log", func(t *testing.T) {
		_, err := svc.RateResponse(other.ID, logRow.ID, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSaveVoiceMessage(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	first, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)

	msg, err := svc.SaveVoiceMessage(user.ID, first.SessionID, "voice_messages/abc.ogg", "")
	require.NoError(t, err)
	assert.Equal(t, "[Voice message received]", msg.Message)
	assert.Equal(t, "voice_messages/abc.ogg", msg.VoiceInput)
	assert.Equal(t, "user", msg.Role)
	assert.Equal(t, "en", msg.Language)

	// No assistant reply is generated for voice input
	var count int64
	require.NoError(t, db.Model(&models.ChatMessage{}).
		Where("session_id = ? AND role = ?", first.SessionID, "assistant").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// Sends for different users/sessions must reach the provider concurrently;
// only same-session sends are serialized.
func TestSendMessageCrossSessionParallelism(t *testing.T) {
	db := newTestDB(t)
	provider := &blockingProvider{
		inFlight: make(chan struct{}, 2),
		release:  make(chan struct{}),
	}
	svc := newChatService(db, provider, nil)
	alice := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	bob := newTestUser(t, db, intPtr(40), strPtr("teacher"), strPtr("Delhi"))

	var wg sync.WaitGroup
	for _, u := range []*models.User{alice, bob} {
		user := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
			assert.NoError(t, err)
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-provider.inFlight:
		case <-time.After(2 * time.Second):
			t.Fatal("cross-session sends serialized; expected both provider calls in flight")
		}
	}
	close(provider.release)
	wg.Wait()
}

func TestSessionLocksEvictedAfterSend(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	first, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), user, "more", &first.SessionID, "en", "")
	require.NoError(t, err)

	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()
	assert.Empty(t, svc.sessionLocks)
}

func TestSessionMessagesAndListSessions(t *testing.T) {
	db := newTestDB(t)
	svc := newChatService(db, &fakeProvider{response: "ok"}, nil)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	other := newTestUser(t, db, intPtr(40), strPtr("teacher"), strPtr("Delhi"))

	first, err := svc.SendMessage(context.Background(), user, "hello", nil, "en", "")
	require.NoError(t, err)
	_, err = svc.SendMessage(context.Background(), user, "more", &first.SessionID, "en", "")
	require.NoError(t, err)

	messages, err := svc.SessionMessages(user.ID, first.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, "hello", messages[0].Message)
	assert.Equal(t, "more", messages[2].Message)

	_, err = svc.SessionMessages(other.ID, first.SessionID)
	assert.ErrorIs(t, err, ErrNotFound)

	sessions, err := svc.ListSessions(user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	sessions, err = svc.ListSessions(other.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
