package generator

import (
	"context"
	"fmt"
)

// LLMClient abstracts the model backend so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the base configuration handed to concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLM picks the client for the configured provider.
func NewLLM(cfg LLMSettings) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAILLMFromConfig(&cfg)
	case ProviderDeepSeek:
		// DeepSeek speaks the OpenAI protocol behind its own base URL.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLMFromConfig(&cfg)
	case ProviderMock:
		return MockLLM{}, nil
	case "":
		return nil, fmt.Errorf("llm config missing; please set llm.provider")
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
