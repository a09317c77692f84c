package itemgen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/abhisek/examprep/internal/exam"
)

// envelope is the batch response before validation. items is the only
// permitted top-level key.
type envelope struct {
	Items *[]exam.WireItem `json:"items"`
}

// Decode parses a batch response and runs vs over it. Plan-derived fields
// (domain and objective) are taken from req rather than trusted from the
// response.
func Decode(raw []byte, req BatchRequest, vs []Validator) ([]exam.RawItem, *ValidationError) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, decodeFailure("response is not a valid item batch: %v", err)
	}
	if env.Items == nil {
		return nil, decodeFailure("response is missing the items array")
	}

	items := make([]exam.RawItem, len(*env.Items))
	for i, w := range *env.Items {
		item, err := w.RawItem()
		if err != nil {
			return nil, decodeFailure("items[%d]: %v", i, err)
		}
		items[i] = item
	}
	if len(items) != len(req.Items) {
		return nil, decodeFailure("expected %d items, got %d", len(req.Items), len(items))
	}

	if verr := RunValidators(vs, items, req); verr != nil {
		return nil, verr
	}

	for i := range items {
		meta := exam.MetaFromPlan(req.Items[i])
		meta.Prompt = items[i].Prompt
		meta.Explanation = items[i].Explanation
		items[i].Meta = meta
	}
	return items, nil
}

// Encode produces the wire envelope for items.
func Encode(items []exam.RawItem) ([]byte, error) {
	wire := make([]exam.WireItem, len(items))
	for i, it := range items {
		wire[i] = it.Wire()
	}
	return json.Marshal(map[string]any{"items": wire})
}

func decodeFailure(format string, args ...any) *ValidationError {
	return &ValidationError{
		Validator: "decode",
		Message:   fmt.Sprintf(format, args...),
		Retryable: true,
	}
}
