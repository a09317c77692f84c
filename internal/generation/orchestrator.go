package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/examprep/internal/cache"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

// Status is the outcome of a Run.
type Status string

const (
	// StatusComplete means every plan item was collected.
	StatusComplete Status = "complete"

	// StatusPaused means generation stopped at the last checkpoint and can
	// be resumed. Result.Err says why, and is nil after cancellation.
	StatusPaused Status = "paused"
)

// Result reports where a Run stopped.
type Result struct {
	State  State
	Status Status
	Err    error
}

// Orchestrator drives a Synthesizer over a plan one batch at a time,
// checkpointing after every batch.
type Orchestrator struct {
	synth    itemgen.Synthesizer
	states   StateStore
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
	progress func(State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache serves batches with a known fingerprint from c.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the time source for checkpoint timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithProgress registers fn to be called after every successful checkpoint.
func WithProgress(fn func(State)) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(synth itemgen.Synthesizer, states StateStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		synth:  synth,
		states: states,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start persists the initial state and runs it.
func (o *Orchestrator) Start(ctx context.Context, s State) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	if err := o.checkpoint(ctx, s); err != nil {
		return Result{}, err
	}
	return o.Run(ctx, s)
}

// Resume loads the checkpoint for sessionID and continues from its
// NextPlanIndex.
func (o *Orchestrator) Resume(ctx context.Context, sessionID string) (Result, error) {
	s, err := o.states.Load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	return o.Run(ctx, s)
}

// Run issues batches sequentially until the plan is complete, a batch
// fails, or ctx is cancelled. Batch failures and cancellation are reported
// through Result; the returned error is reserved for invalid state and
// checkpoint write failures.
func (o *Orchestrator) Run(ctx context.Context, s State) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	for !s.Done() {
		if ctx.Err() != nil {
			return o.paused(s, nil), nil
		}

		req, _ := s.NextBatch()
		log := o.logger.With("session_id", s.SessionID, "batch", req.BatchIndex, "from", s.NextPlanIndex, "size", len(req.Items))

		items, fp, hit, err := o.fetch(ctx, req, log)
		var next State
		if err == nil {
			next, err = s.Advance(items, o.now())
			if err != nil {
				err = &exam.BatchInvalidError{Attempts: 1, Reason: err.Error()}
			} else if !hit {
				o.remember(ctx, fp, items, log)
			}
		}

		if err != nil {
			if errors.Is(err, exam.ErrGenerationCancelled) || ctx.Err() != nil {
				log.Info("generation cancelled")
				return o.paused(s, nil), nil
			}
			log.Warn("batch failed", "error", err)
			s = s.Fail(err, o.now())
			if cerr := o.checkpoint(ctx, s); cerr != nil {
				return Result{State: s}, cerr
			}
			return o.paused(s, err), nil
		}

		if err := o.checkpoint(ctx, next); err != nil {
			return Result{State: s}, err
		}
		s = next
		log.Debug("batch collected", "collected", s.NextPlanIndex, "total", len(s.Plan))
		if o.progress != nil {
			o.progress(s)
		}
	}

	return Result{State: s, Status: StatusComplete}, nil
}

func (o *Orchestrator) paused(s State, err error) Result {
	return Result{State: s, Status: StatusPaused, Err: err}
}

// fetch serves a batch from the cache or the synthesizer and reports the
// cache fingerprint and whether it was a hit. Cache failures are logged and
// treated as misses.
func (o *Orchestrator) fetch(ctx context.Context, req itemgen.BatchRequest, log *slog.Logger) ([]exam.RawItem, string, bool, error) {
	var fp string
	if o.cache != nil {
		fp = cache.Fingerprint(req)
		items, ok, err := o.cache.Get(ctx, fp)
		switch {
		case err != nil:
			log.Warn("cache lookup failed", "error", err)
		case ok && len(items) == len(req.Items):
			log.Debug("cache hit", "fingerprint", fp)
			return items, fp, true, nil
		}
	}

	items, err := o.synth.Synthesize(ctx, req)
	return items, fp, false, err
}

// remember caches a batch that State.Advance has accepted.
func (o *Orchestrator) remember(ctx context.Context, fp string, items []exam.RawItem, log *slog.Logger) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Set(ctx, fp, items, o.cacheTTL); err != nil {
		log.Warn("cache write failed", "error", err)
	}
}

// checkpoint persists s even if ctx has been cancelled.
func (o *Orchestrator) checkpoint(ctx context.Context, s State) error {
	if err := o.states.Save(context.WithoutCancel(ctx), s); err != nil {
		return fmt.Errorf("checkpoint session %s: %w", s.SessionID, err)
	}
	return nil
}
