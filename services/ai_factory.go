package services

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// GetAIProvider builds the generation provider selected by AI_PROVIDER.
// Callers keep the returned error alongside a nil provider: the chat service
// reads its wording to pick the right degradation response instead of
// failing requests.
func GetAIProvider() (AIProvider, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if mode == "" {
		mode = "openrouter"
		log.Printf("[AIProvider] AI_PROVIDER not set, defaulting to 'openrouter'")
	}

	var (
		provider AIProvider
		err      error
	)
	switch mode {
	case "openrouter":
		provider, err = NewOpenRouterClient()
	case "gemini":
		provider, err = NewGeminiClient()
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER '%s' (valid options: openrouter, gemini)", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", mode, err)
	}

	log.Printf("[AIProvider] ✓ %s ready (model: %s)", provider.GetProviderName(), provider.GetModelName())
	return provider, nil
}
