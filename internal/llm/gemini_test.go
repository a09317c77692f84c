package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema_BatchEnvelope(t *testing.T) {
	s := geminiSchema(itemsSchema().Definition)

	require.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"items"}, s.Required)
	assert.Equal(t, []string{"items"}, s.PropertyOrdering)

	items := s.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeArray, items.Type)
	require.NotNil(t, items.MaxItems)
	assert.EqualValues(t, 20, *items.MaxItems)

	item := items.Items
	require.NotNil(t, item)
	assert.Equal(t, []string{"prompt", "answerType", "correct"}, item.PropertyOrdering)
	assert.Equal(t, []string{"single", "multi"}, item.Properties["answerType"].Enum)
	require.NotNil(t, item.Properties["correct"].Items.Minimum)
	assert.Zero(t, *item.Properties["correct"].Items.Minimum)
}

func TestGemini_MaxTokensFinish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"items":[{"pro`}}},
				"finishReason": "MAX_TOKENS",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 500, "candidatesTokenCount": 4096, "totalTokenCount": 4596},
		})
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	p := &GeminiProvider{client: client, model: resolveModel("gemini-flash", geminiAliases)}
	assert.Equal(t, "gemini-2.5-flash", p.ModelID())

	_, err = p.Generate(context.Background(), batchRequest())
	var truncated *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &truncated)
	assert.False(t, IsTransient(err))
}
