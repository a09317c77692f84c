package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicStub(t *testing.T, status int, header http.Header, body any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		for k, vs := range header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 812, "output_tokens": 2400},
	}
}

func anthropicError(kind, msg string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": msg}}
}

func batchRequest() Request {
	return Request{
		System:    "You write certification practice items.",
		Messages:  []Message{{Role: RoleUser, Content: "Slots: 2"}},
		Schema:    itemsSchema(),
		MaxTokens: 4096,
	}
}

func TestAnthropic_Batch(t *testing.T) {
	p := anthropicStub(t, http.StatusOK, nil, anthropicMessage(`{"items":[{"prompt":"p"}]}`, "end_turn"))
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), batchRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"prompt":"p"}]}`, string(resp.Content))
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 812, OutputTokens: 2400, TotalTokens: 3212}, resp.Usage)
}

func TestAnthropic_TruncatedBatch(t *testing.T) {
	p := anthropicStub(t, http.StatusOK, nil, anthropicMessage(`{"items":[{"prom`, "max_tokens"))

	_, err := p.Generate(context.Background(), batchRequest())
	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, 4096, truncated.MaxTokens)
	reason, ok := ContentFailure(err)
	assert.True(t, ok)
	assert.Contains(t, reason, "4096")
}

func TestAnthropic_SchemaMismatch(t *testing.T) {
	p := anthropicStub(t, http.StatusOK, nil, anthropicMessage(`{"items":"none"}`, "end_turn"))

	_, err := p.Generate(context.Background(), batchRequest())
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, `{"items":"none"}`, string(invalid.Content))
}

func TestAnthropic_ErrorMapping(t *testing.T) {
	t.Run("rate limit with hint", func(t *testing.T) {
		p := anthropicStub(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}},
			anthropicError("rate_limit_error", "slow down"))
		_, err := p.Generate(context.Background(), batchRequest())
		var rl *ErrRateLimit
		require.ErrorAs(t, err, &rl)
		assert.Equal(t, 7*time.Second, rl.RetryAfter)
		assert.True(t, IsTransient(err))
	})
	t.Run("overloaded", func(t *testing.T) {
		p := anthropicStub(t, 529, nil, anthropicError("overloaded_error", "busy"))
		_, err := p.Generate(context.Background(), batchRequest())
		var unavail *ErrProviderUnavailable
		require.ErrorAs(t, err, &unavail)
	})
	t.Run("bad key", func(t *testing.T) {
		p := anthropicStub(t, http.StatusUnauthorized, nil, anthropicError("authentication_error", "invalid x-api-key"))
		_, err := p.Generate(context.Background(), batchRequest())
		var rejected *ErrRequestRejected
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, http.StatusUnauthorized, rejected.StatusCode)
		assert.False(t, IsTransient(err))
	})
}

func TestAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"})
	assert.Error(t, err)
}
