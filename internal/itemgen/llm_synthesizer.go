package itemgen

import (
	"context"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
)

// maxAttempts is the initial request plus one corrective retry.
const maxAttempts = 2

// LLMSynthesizer implements Synthesizer using an LLM provider.
type LLMSynthesizer struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMSynthesizer with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider, config: cfg}
}

// Synthesize generates one batch. A response that fails validation is
// re-requested once with the rejection reason appended; a second failure
// returns *exam.BatchInvalidError. Provider failures return
// *exam.TransportError and cancellation wraps exam.ErrGenerationCancelled.
func (g *LLMSynthesizer) Synthesize(ctx context.Context, req BatchRequest) ([]exam.RawItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = llm.WithBatch(llm.WithPurpose(ctx, "item-gen"), req.SessionID, req.BatchIndex)

	userMsg := buildUserMessage(req)
	var reason string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		msg := userMsg
		if reason != "" {
			msg = withCorrection(userMsg, reason)
		}

		resp, err := g.provider.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
			Schema:      BatchSchema,
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, exam.Cancelled(ctxErr)
			}
			if r, ok := llm.ContentFailure(err); ok {
				reason = r
				continue
			}
			return nil, &exam.TransportError{Err: err}
		}

		items, verr := Decode(resp.Content, req, g.config.Validators)
		if verr == nil {
			return items, nil
		}
		reason = verr.Error()
		if !verr.Retryable {
			return nil, &exam.BatchInvalidError{Attempts: attempt, Reason: reason}
		}
	}

	return nil, &exam.BatchInvalidError{Attempts: maxAttempts, Reason: reason}
}
