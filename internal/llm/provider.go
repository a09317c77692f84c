package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured completion. Implementations validate
// Content against Request.Schema before returning it.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn or short multi-turn prompt. Item generation
// sends one system prompt and one user message per batch.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the vendor into structured output and
	// the reply is checked against it. Without it Content is raw text.
	Schema *Schema

	MaxTokens int

	// Temperature 0 leaves the vendor default in place.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document. Name doubles as the OpenAI
// response format name, so keep it kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopOther     = "other"
)

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that actually served the call
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel expands a short alias; unknown names pass through so full
// vendor model IDs can be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
