package question

import (
	"fmt"
	"slices"

	"github.com/abhisek/examprep/internal/exam"
)

// NormalizeAll assigns ids q1..qN in input order and normalizes each item.
func NormalizeAll(items []exam.RawItem) []Question {
	out := make([]Question, len(items))
	for i, item := range items {
		out[i] = Normalize(fmt.Sprintf("q%d", i+1), item)
	}
	return out
}

// Normalize converts a raw item into a Question with id qid. It never
// fails: out-of-range indices are dropped and duplicates collapsed.
func Normalize(qid string, item exam.RawItem) Question {
	q := Question{
		ID:               qid,
		Domain:           item.Domain,
		ObjectiveID:      item.ObjectiveID,
		ObjectiveTitle:   item.ObjectiveTitle,
		ObjectiveBullets: item.ObjectiveBullets,
		Prompt:           item.Prompt,
		Explanation:      item.Explanation,
	}

	switch b := item.Body.(type) {
	case exam.ChoiceBody:
		q.Body = normalizeChoice(qid, b)
	case exam.OrderBody:
		q.Body = normalizeOrder(qid, b)
	case exam.MatchBody:
		q.Body = normalizeMatch(qid, b)
	default:
		q.Body = Choice{}
	}
	return q
}

func normalizeChoice(qid string, b exam.ChoiceBody) Choice {
	opts := options(qid, "o", b.Options)
	var correct []string
	for _, i := range b.CorrectIndices {
		if i >= 0 && i < len(opts) {
			correct = append(correct, opts[i].ID)
		}
	}
	return Choice{Options: opts, Correct: uniqueSorted(correct), Multiple: b.Multiple}
}

func normalizeOrder(qid string, b exam.OrderBody) Order {
	steps := options(qid, "s", b.Items)
	seen := make(map[int]bool, len(b.CorrectOrder))
	var correct []string
	for _, i := range b.CorrectOrder {
		if i < 0 || i >= len(steps) || seen[i] {
			continue
		}
		seen[i] = true
		correct = append(correct, steps[i].Text)
	}
	return Order{Steps: steps, Correct: correct}
}

func normalizeMatch(qid string, b exam.MatchBody) Match {
	left := options(qid, "l", b.Left)
	right := options(qid, "r", b.Right)
	var correct []string
	for _, p := range b.CorrectPairs {
		if p.LeftIndex < 0 || p.LeftIndex >= len(left) || p.RightIndex < 0 || p.RightIndex >= len(right) {
			continue
		}
		correct = append(correct, PairKey(left[p.LeftIndex].Text, right[p.RightIndex].Text))
	}
	return Match{Left: left, Right: right, Correct: uniqueSorted(correct)}
}

func options(qid, kind string, texts []string) []Option {
	out := make([]Option, len(texts))
	for i, t := range texts {
		out[i] = Option{ID: fmt.Sprintf("%s-%s%d", qid, kind, i+1), Text: t}
	}
	return out
}

func uniqueSorted(ss []string) []string {
	out := slices.Clone(ss)
	slices.Sort(out)
	return slices.Compact(out)
}
