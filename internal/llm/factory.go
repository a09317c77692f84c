package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/examprep/internal/store"
)

// NewProvider builds the configured vendor adapter and wraps it as
// timeout -> retry -> event log -> vendor. A nil eventRepo skips the log.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "mock":
		return NewMockProvider(), nil
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p := base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo)
	}
	p = WithRetry(p, cfg.Retry)
	if cfg.Timeout > 0 {
		p = &timeoutProvider{inner: p, timeout: cfg.Timeout}
	}
	return p, nil
}

// NewProviderFromEnv reads EXAMPREP_* variables and, when no provider is
// named explicitly and the default has no key, falls back to DiscoverConfig.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	cfg := ConfigFromEnv()
	if os.Getenv("EXAMPREP_LLM_PROVIDER") == "" && cfg.Validate() != nil {
		found, ok := DiscoverConfig()
		if !ok {
			return nil, errors.New("no LLM provider configured: set EXAMPREP_LLM_PROVIDER or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY")
		}
		found.Timeout = cfg.Timeout
		cfg = found
	}
	return NewProvider(ctx, cfg, eventRepo)
}

// timeoutProvider caps the total time spent on one Generate call.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	resp, err := t.inner.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		// Our own deadline, not the caller's: report it as an outage.
		return nil, &ErrProviderUnavailable{Err: fmt.Errorf("no reply within %s: %w", t.timeout, err)}
	}
	return resp, err
}
