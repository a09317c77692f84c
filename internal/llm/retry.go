package llm

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
)

// RetryProvider repeats transient failures with capped exponential backoff.
// Content failures go straight back to the caller, which owns the corrective
// retry with the rejection reason in the prompt.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg, logger: slog.Default()}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil || !IsTransient(err) || attempt >= r.config.MaxAttempts {
			return resp, err
		}

		wait := r.wait(attempt, err)
		tags := TagsFrom(ctx)
		r.logger.WarnContext(ctx, "llm call failed, retrying",
			"model", r.inner.ModelID(),
			"purpose", tags.Purpose,
			"session", tags.SessionID,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

// wait returns the pause before the next attempt. A vendor Retry-After
// hint wins; otherwise InitialWait grows by Multiplier up to MaxWait with
// 20% jitter either way.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	d := float64(r.config.InitialWait)
	for range attempt - 1 {
		d *= r.config.Multiplier
		if d >= float64(r.config.MaxWait) {
			d = float64(r.config.MaxWait)
			break
		}
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
