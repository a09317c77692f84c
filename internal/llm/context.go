package llm

import "context"

type tagsKey struct{}

// Tags label a request for the event log. The zero BatchIndex is valid, so
// HasBatch distinguishes "batch 0" from "no batch".
type Tags struct {
	Purpose    string
	SessionID  string
	BatchIndex int
	HasBatch   bool
}

// WithPurpose labels requests made with ctx, e.g. "item-gen" or "backend".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	t := TagsFrom(ctx)
	t.Purpose = purpose
	return context.WithValue(ctx, tagsKey{}, t)
}

// WithBatch attributes requests made with ctx to one generation batch.
func WithBatch(ctx context.Context, sessionID string, batchIndex int) context.Context {
	t := TagsFrom(ctx)
	t.SessionID = sessionID
	t.BatchIndex = batchIndex
	t.HasBatch = true
	return context.WithValue(ctx, tagsKey{}, t)
}

// TagsFrom returns the labels attached to ctx. Purpose defaults to "unknown".
func TagsFrom(ctx context.Context) Tags {
	if t, ok := ctx.Value(tagsKey{}).(Tags); ok {
		return t
	}
	return Tags{Purpose: "unknown"}
}
