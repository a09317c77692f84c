package llm

import (
	"context"
	"testing"
	"time"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"EXAMPREP_LLM_PROVIDER", "EXAMPREP_ANTHROPIC_API_KEY", "EXAMPREP_OPENAI_API_KEY",
		"EXAMPREP_GEMINI_API_KEY", "EXAMPREP_OPENROUTER_API_KEY", "EXAMPREP_ANTHROPIC_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "EXAMPREP_LLM_TIMEOUT",
		"EXAMPREP_ANTHROPIC_BASE_URL", "EXAMPREP_OPENAI_BASE_URL", "EXAMPREP_OPENROUTER_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("EXAMPREP_LLM_PROVIDER", "openai")
	t.Setenv("EXAMPREP_OPENAI_API_KEY", "sk-test")
	t.Setenv("EXAMPREP_OPENAI_MODEL", "gpt-4o")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDiscoverConfig_Priority(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected a discovered provider")
	}
	if cfg.Provider != "openai" {
		t.Fatalf("provider = %q, want openai", cfg.Provider)
	}
}

func TestNewProviderFromEnv_NothingConfigured(t *testing.T) {
	clearProviderEnv(t)
	if _, err := NewProviderFromEnv(context.Background(), nil); err == nil {
		t.Fatal("expected error when no provider is configured")
	}
}

func TestNewProviderFromEnv_Discovers(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-or")

	p, err := NewProviderFromEnv(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "google/gemini-2.0-flash-exp" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, false},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, true},
		{"openrouter without key", Config{Provider: "openrouter", OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"mock", Config{Provider: "mock"}, true},
		{"unknown", Config{Provider: "llama"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, ok %v", err, tt.ok)
			}
		})
	}
}

func TestConfigFromEnv_TimeoutAndBaseURL(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("EXAMPREP_LLM_TIMEOUT", "2m")
	t.Setenv("EXAMPREP_ANTHROPIC_BASE_URL", "http://proxy.internal")

	cfg := ConfigFromEnv()
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Anthropic.BaseURL != "http://proxy.internal" {
		t.Errorf("base url = %q", cfg.Anthropic.BaseURL)
	}
}
