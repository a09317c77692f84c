package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices one call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// LookupCost prices a model ID as reported in recorded events. OpenRouter
// vendor prefixes ("anthropic/...") are ignored and the longest matching
// family prefix wins, so dated and "-latest" IDs resolve to their family.
// Returns nil for unknown models.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(modelID)
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	id = strings.TrimPrefix(id, "models/")

	var best *ModelCost
	bestLen := 0
	for _, f := range modelFamilies {
		if len(f.prefix) > bestLen && strings.HasPrefix(id, f.prefix) && boundary(id, len(f.prefix)) {
			c := f.cost
			best, bestLen = &c, len(f.prefix)
		}
	}
	return best
}

// boundary reports whether a family prefix of length n ends at a segment
// break, so "gpt-4o" does not price "gpt-4o-mini".
func boundary(id string, n int) bool {
	if n == len(id) {
		return true
	}
	if id[n] != '-' {
		return false
	}
	switch seg, _, _ := strings.Cut(id[n+1:], "-"); seg {
	case "latest", "exp", "preview":
		return true
	default:
		return isDigits(seg)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Prices as published by the vendors, February 2026.
var modelFamilies = []struct {
	prefix string
	cost   ModelCost
}{
	{"claude-3-5-haiku", ModelCost{0.8, 4}},
	{"claude-3-5-sonnet", ModelCost{3, 15}},
	{"claude-3-7-sonnet", ModelCost{3, 15}},
	{"claude-haiku-4-5", ModelCost{1, 5}},
	{"claude-sonnet-4", ModelCost{3, 15}},
	{"claude-sonnet-4-5", ModelCost{3, 15}},
	{"claude-opus-4", ModelCost{15, 75}},
	{"claude-opus-4-1", ModelCost{15, 75}},
	{"claude-opus-4-5", ModelCost{5, 25}},
	{"claude-opus-4-6", ModelCost{5, 25}},

	{"gpt-4o", ModelCost{2.5, 10}},
	{"gpt-4o-mini", ModelCost{0.15, 0.6}},
	{"gpt-4.1", ModelCost{2, 8}},
	{"gpt-4.1-mini", ModelCost{0.4, 1.6}},
	{"gpt-4.1-nano", ModelCost{0.1, 0.4}},
	{"gpt-5", ModelCost{1.25, 10}},
	{"gpt-5-mini", ModelCost{0.25, 2}},
	{"gpt-5-nano", ModelCost{0.05, 0.4}},
	{"gpt-5.1", ModelCost{1.25, 10}},
	{"gpt-5.2", ModelCost{1.75, 14}},
	{"o3", ModelCost{2, 8}},
	{"o3-mini", ModelCost{1.1, 4.4}},
	{"o4-mini", ModelCost{1.1, 4.4}},

	{"gemini-2.0-flash", ModelCost{0.1, 0.4}},
	{"gemini-2.0-flash-lite", ModelCost{0.075, 0.3}},
	{"gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{"gemini-2.5-flash-lite", ModelCost{0.1, 0.4}},
	{"gemini-2.5-pro", ModelCost{1.25, 10}},
	{"gemini-3-flash", ModelCost{0.5, 3}},
	{"gemini-3-pro", ModelCost{2, 12}},
}
