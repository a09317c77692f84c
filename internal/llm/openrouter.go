package llm

import (
	"errors"
	"net/http"
)

const (
	openRouterURL   = "https://openrouter.ai/api/v1"
	openRouterTitle = "examprep"
	openRouterRef   = "https://github.com/abhisek/examprep"
)

// OpenRouterProvider is the Chat Completions adapter pointed at OpenRouter,
// with its app attribution headers attached.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = openRouterURL
	}
	doer := &http.Client{Transport: headerTransport{headers: map[string]string{
		"HTTP-Referer": openRouterRef,
		"X-Title":      openRouterTitle,
	}}}
	inner, err := newChatCompletionsProvider(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: base}, doer)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
