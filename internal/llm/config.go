package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures one vendor. Provider is one of
// "anthropic", "openai", "gemini", "openrouter" or "mock".
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// vendor describes where a provider's settings live in the environment.
// Discovery walks vendors in slice order.
type vendor struct {
	name        string
	keyVar      string // EXAMPREP_* key
	discoverVar string // vendor's own conventional key
	modelVar    string
	baseURLVar  string
	fields      func(*Config) (key, model, baseURL *string)
}

var vendors = []vendor{
	{"gemini", "EXAMPREP_GEMINI_API_KEY", "GEMINI_API_KEY", "EXAMPREP_GEMINI_MODEL", "",
		func(c *Config) (*string, *string, *string) { return &c.Gemini.APIKey, &c.Gemini.Model, nil }},
	{"openai", "EXAMPREP_OPENAI_API_KEY", "OPENAI_API_KEY", "EXAMPREP_OPENAI_MODEL", "EXAMPREP_OPENAI_BASE_URL",
		func(c *Config) (*string, *string, *string) {
			return &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL
		}},
	{"anthropic", "EXAMPREP_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY", "EXAMPREP_ANTHROPIC_MODEL", "EXAMPREP_ANTHROPIC_BASE_URL",
		func(c *Config) (*string, *string, *string) {
			return &c.Anthropic.APIKey, &c.Anthropic.Model, &c.Anthropic.BaseURL
		}},
	{"openrouter", "EXAMPREP_OPENROUTER_API_KEY", "OPENROUTER_API_KEY", "EXAMPREP_OPENROUTER_MODEL", "EXAMPREP_OPENROUTER_BASE_URL",
		func(c *Config) (*string, *string, *string) {
			return &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL
		}},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		// A 20-item batch with explanations takes a while on slower models.
		Timeout: 90 * time.Second,
	}
}

// ConfigFromEnv overlays EXAMPREP_* variables on DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("EXAMPREP_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	for _, v := range vendors {
		key, model, baseURL := v.fields(&cfg)
		setFromEnv(key, v.keyVar)
		setFromEnv(model, v.modelVar)
		if baseURL != nil {
			setFromEnv(baseURL, v.baseURLVar)
		}
	}
	if d, err := time.ParseDuration(os.Getenv("EXAMPREP_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// DiscoverConfig picks the first vendor whose conventional API key variable
// is set, in the order Gemini, OpenAI, Anthropic, OpenRouter.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		k := os.Getenv(v.discoverVar)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		key, _, _ := v.fields(&cfg)
		*key = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected vendor is known and has a key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key, _, _ := v.fields(&c); *key == "" {
		return fmt.Errorf("%s is required for the %s provider", v.keyVar, v.name)
	}
	return nil
}

func setFromEnv(dst *string, name string) {
	if name == "" {
		return
	}
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}
