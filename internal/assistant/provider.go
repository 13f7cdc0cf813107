package assistant

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderScripted  = "scripted"
)

// Config selects and configures the assistant backend
type Config struct {
	Provider  string        `json:"provider"`
	APIKey    string        `json:"api_key"`
	Model     string        `json:"model"`
	BaseURL   string        `json:"base_url"`
	MaxTokens int           `json:"max_tokens"`
	Timeout   time.Duration `json:"timeout"`
}

// New builds the configured assistant. Without a provider it picks
// Anthropic when a key is set and the scripted responder otherwise.
func New(ctx context.Context, config Config, logger *zap.Logger) (Assistant, string, error) {
	provider := config.Provider
	if provider == "" {
		provider = ProviderScripted
		if config.APIKey != "" {
			provider = ProviderAnthropic
		}
	}

	switch provider {
	case ProviderAnthropic:
		ac := DefaultAnthropicConfig(config.APIKey)
		if config.Model != "" {
			ac.Model = config.Model
		}
		if config.BaseURL != "" {
			ac.BaseURL = config.BaseURL
		}
		if config.MaxTokens > 0 {
			ac.MaxTokens = config.MaxTokens
		}
		if config.Timeout > 0 {
			ac.Timeout = config.Timeout
		}
		return NewLLMAssistant(NewAnthropicClient(ac, logger)), provider, nil

	case ProviderGemini:
		client, err := NewGeminiClient(ctx, GeminiConfig{
			APIKey:    config.APIKey,
			Model:     config.Model,
			MaxTokens: config.MaxTokens,
		})
		if err != nil {
			return nil, provider, err
		}
		return NewLLMAssistant(client), provider, nil

	case ProviderScripted:
		return NewScripted(), provider, nil

	default:
		return nil, provider, fmt.Errorf("unknown assistant provider %q", provider)
	}
}
