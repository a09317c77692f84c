package itemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// Cardinality limits for item bodies.
const (
	MinOptions      = 4
	MaxOptions      = 6
	MaxCorrect      = 3
	MinOrderItems   = 4
	MaxOrderItems   = 8
	MinMatchEntries = 3
	MaxMatchEntries = 8
)

// StructuralValidator checks the batch length, that every item has the
// requested answer type, and the per-type cardinalities.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(items []exam.RawItem, req BatchRequest) *ValidationError {
	if len(items) != len(req.Items) {
		return v.fail("expected %d items, got %d", len(req.Items), len(items))
	}
	for i, item := range items {
		want := req.Items[i].AnswerType
		if got := item.AnswerType(); got != want {
			return v.fail("items[%d]: answerType %q does not match requested %q", i, got, want)
		}
		if strings.TrimSpace(item.Prompt) == "" {
			return v.fail("items[%d]: prompt is empty", i)
		}
		if msg := checkBody(item.Body); msg != "" {
			return v.fail("items[%d]: %s", i, msg)
		}
	}
	return nil
}

func (v *StructuralValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{
		Validator: v.Name(),
		Message:   fmt.Sprintf(format, args...),
		Retryable: true,
	}
}

func checkBody(body exam.Body) string {
	switch b := body.(type) {
	case exam.ChoiceBody:
		return checkChoice(b)
	case exam.OrderBody:
		return checkOrder(b)
	case exam.MatchBody:
		return checkMatch(b)
	}
	return "missing body"
}

func checkChoice(b exam.ChoiceBody) string {
	if n := len(b.Options); n < MinOptions || n > MaxOptions {
		return fmt.Sprintf("options has %d entries, want %d-%d", n, MinOptions, MaxOptions)
	}
	if blank(b.Options) {
		return "options contains an empty entry"
	}
	if n := len(b.CorrectIndices); n < 1 || n > MaxCorrect {
		return fmt.Sprintf("correctIndices has %d entries, want 1-%d", n, MaxCorrect)
	}
	if msg := distinctInRange("correctIndices", b.CorrectIndices, len(b.Options)); msg != "" {
		return msg
	}
	return ""
}

func checkOrder(b exam.OrderBody) string {
	if n := len(b.Items); n < MinOrderItems || n > MaxOrderItems {
		return fmt.Sprintf("orderItems has %d entries, want %d-%d", n, MinOrderItems, MaxOrderItems)
	}
	if blank(b.Items) {
		return "orderItems contains an empty entry"
	}
	if len(b.CorrectOrder) != len(b.Items) {
		return fmt.Sprintf("correctOrder has %d entries, want %d", len(b.CorrectOrder), len(b.Items))
	}
	return distinctInRange("correctOrder", b.CorrectOrder, len(b.Items))
}

func checkMatch(b exam.MatchBody) string {
	if n := len(b.Left); n < MinMatchEntries || n > MaxMatchEntries {
		return fmt.Sprintf("left has %d entries, want %d-%d", n, MinMatchEntries, MaxMatchEntries)
	}
	if n := len(b.Right); n < MinMatchEntries || n > MaxMatchEntries {
		return fmt.Sprintf("right has %d entries, want %d-%d", n, MinMatchEntries, MaxMatchEntries)
	}
	if blank(b.Left) || blank(b.Right) {
		return "match columns contain an empty entry"
	}
	if len(b.CorrectPairs) != len(b.Left) {
		return fmt.Sprintf("correctPairs has %d entries, want one per left entry (%d)", len(b.CorrectPairs), len(b.Left))
	}
	lefts := make([]int, len(b.CorrectPairs))
	for i, p := range b.CorrectPairs {
		if p.RightIndex < 0 || p.RightIndex >= len(b.Right) {
			return fmt.Sprintf("correctPairs[%d]: rightIndex %d out of range", i, p.RightIndex)
		}
		lefts[i] = p.LeftIndex
	}
	return distinctInRange("correctPairs leftIndex", lefts, len(b.Left))
}

func distinctInRange(field string, idx []int, n int) string {
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i < 0 || i >= n {
			return fmt.Sprintf("%s: index %d out of range", field, i)
		}
		if seen[i] {
			return fmt.Sprintf("%s: duplicate index %d", field, i)
		}
		seen[i] = true
	}
	return ""
}

func blank(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}
