package models

import "time"

// ChatSession: one conversation between a user and the assistant.
// Title is derived from the first user message, never user-set.
type ChatSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     *string   `gorm:"size:200" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage: single message in a session, ordered by timestamp ascending.
type ChatMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  uint      `gorm:"index;not null" json:"session_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Role       string    `gorm:"size:20;not null" json:"role"` // user|assistant|system
	Message    string    `gorm:"type:text" json:"message"`
	VoiceInput string    `gorm:"size:500" json:"voice_input,omitempty"` // stored media path
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Language   string    `gorm:"size:10;default:'en'" json:"language"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// PromptTemplate: category-keyed bilingual prompt configuration. At most one
// template resolves per category.
type PromptTemplate struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:200;not null" json:"name"`
	Category           string    `gorm:"size:100;index;not null" json:"category"`
	EnglishPrompt      string    `gorm:"type:text" json:"english_prompt"`
	HindiPrompt        string    `gorm:"type:text" json:"hindi_prompt"`
	SystemInstructions string    `gorm:"type:text" json:"system_instructions"`
	ResponseFormat     string    `gorm:"size:50;default:'text'" json:"response_format"` // text|json|list|structured
	Temperature        float32   `gorm:"default:0.7" json:"temperature"`
	MaxTokens          int       `gorm:"default:500" json:"max_tokens"`
	CreatedAt          time.Time `json:"created_at"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

// AIInteractionLog: append-only record of every generation exchange, including
// degraded responses. Token and latency fields cover provider usage tracking.
type AIInteractionLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	UserInput      string    `gorm:"type:text" json:"user_input"`
	AIResponse     string    `gorm:"type:text" json:"ai_response"`
	TemplateID     *uint     `gorm:"index" json:"template_id"`
	LanguageUsed   string    `gorm:"size:10" json:"language_used"`
	AccuracyRating *int      `json:"accuracy_rating"` // 1-5, set via rate endpoint
	Status         string    `gorm:"size:20;default:'ok'" json:"status"` // ok|degraded
	InputTokens    int       `gorm:"default:0" json:"input_tokens"`
	OutputTokens   int       `gorm:"default:0" json:"output_tokens"`
	LatencyMs      int       `gorm:"default:0" json:"latency_ms"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

func (AIInteractionLog) TableName() string {
	return "ai_interaction_logs"
}
