package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one scripted reply. Err wins over Content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and remembers every
// request. Replies are returned as given, without schema checks. Once the
// script runs out it falls back to Respond, or to ErrProviderUnavailable
// when Respond is nil.
type MockProvider struct {
	mu      sync.Mutex
	script  []MockResponse
	calls   []Request
	Respond func(Request) MockResponse
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Respond != nil:
		respond := m.Respond
		m.mu.Unlock()
		next = respond(req)
		m.mu.Lock()
	default:
		next.Err = &ErrProviderUnavailable{Err: errors.New("mock script exhausted")}
	}
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	usage := next.Usage
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	return &Response{Content: next.Content, Usage: usage, Model: "mock", StopReason: StopEnd}, nil
}

// Enqueue appends replies to the script.
func (m *MockProvider) Enqueue(rs ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, rs...)
}

// Requests returns a copy of every request seen so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
