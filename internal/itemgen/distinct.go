package itemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
)

// DistinctValidator rejects items whose options, steps, or match entries
// repeat after whitespace and case folding.
type DistinctValidator struct{}

func (v *DistinctValidator) Name() string { return "distinct" }

func (v *DistinctValidator) Validate(items []exam.RawItem, _ BatchRequest) *ValidationError {
	for i, item := range items {
		var cols [][]string
		switch b := item.Body.(type) {
		case exam.ChoiceBody:
			cols = [][]string{b.Options}
		case exam.OrderBody:
			cols = [][]string{b.Items}
		case exam.MatchBody:
			cols = [][]string{b.Left, b.Right}
		}
		for _, col := range cols {
			if dup := repeated(col); dup != "" {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("items[%d]: entry %q appears more than once", i, dup),
					Retryable: true,
				}
			}
		}
	}
	return nil
}

func repeated(col []string) string {
	seen := make(map[string]bool, len(col))
	for _, s := range col {
		key := strings.ToLower(catalog.NormalizeSnippet(s))
		if seen[key] {
			return s
		}
		seen[key] = true
	}
	return ""
}
