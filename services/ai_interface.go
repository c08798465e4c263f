package services

import "context"

// GenerationOptions carries the per-call parameters resolved from a prompt
// template (or the defaults when no template matched the category).
type GenerationOptions struct {
	Temperature float32
	MaxTokens   int
}

// DefaultGenerationOptions apply when no prompt template resolves.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{Temperature: 0.7, MaxTokens: 500}
}

// AIProvider is the interface that all AI providers must implement
type AIProvider interface {
	// AskLLM sends a prompt to the AI and returns response with token usage
	// Returns: (response string, inputTokens int, outputTokens int, error)
	AskLLM(ctx context.Context, systemPrompt string, userPrompt string, opts GenerationOptions) (string, int, int, error)

	// GetProviderName returns the name of the provider (e.g., "openrouter", "gemini")
	GetProviderName() string

	// GetModelName returns the model name being used
	GetModelName() string
}
