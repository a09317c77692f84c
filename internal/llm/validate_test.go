package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemsSchema() *Schema {
	return &Schema{
		Name:        "exam-item-batch",
		Description: "A batch of practice items",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"items": map[string]any{
					"type":     "array",
					"maxItems": 20,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"prompt":     map[string]any{"type": "string"},
							"answerType": map[string]any{"type": "string", "enum": []any{"single", "multi"}},
							"correct":    map[string]any{"type": "array", "items": map[string]any{"type": "integer", "minimum": 0}},
						},
						"required":             []any{"prompt"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"items"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"empty batch", `{"items":[]}`, true},
		{"full item", `{"items":[{"prompt":"Which port does SSH use?","answerType":"single","correct":[1]}]}`, true},
		{"missing envelope", `{}`, false},
		{"extra top-level key", `{"items":[],"notes":"x"}`, false},
		{"unknown answer type", `{"items":[{"prompt":"p","answerType":"essay"}]}`, false},
		{"negative index", `{"items":[{"prompt":"p","correct":[-1]}]}`, false},
		{"not json", `{"items":[`, false},
		{"empty body", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(itemsSchema(), json.RawMessage(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.raw, string(invalid.Content))
			assert.NotContains(t, invalid.Error(), "\n")
		})
	}
}

func TestValidateResponse_NilSchemaAcceptsText(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`plain words`)))
}

func TestCompileSchema_KeyedByDefinition(t *testing.T) {
	strict := itemsSchema()
	loose := itemsSchema()
	loose.Definition["additionalProperties"] = true

	a, err := compileSchema(strict)
	require.NoError(t, err)
	b, err := compileSchema(loose)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "same name with a different definition must not share a compiled schema")

	again, err := compileSchema(itemsSchema())
	require.NoError(t, err)
	assert.Same(t, a, again)

	assert.NoError(t, validateResponse(loose, json.RawMessage(`{"items":[],"notes":"x"}`)))
}

func TestFinishResponse(t *testing.T) {
	req := batchRequest()

	resp, err := finishResponse(req, json.RawMessage(`{"items":[]}`), Usage{InputTokens: 3, OutputTokens: 4}, "m", StopEnd)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	_, err = finishResponse(req, json.RawMessage(`{"items":[]}`), Usage{}, "m", StopMaxTokens)
	var truncated *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &truncated, "a cut-off reply is rejected even when it parses")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "a b c", clip("a\n  b\tc"))
	long := clip(strings.Repeat("x", maxReasonLen+50))
	assert.Len(t, long, maxReasonLen+3)
}
