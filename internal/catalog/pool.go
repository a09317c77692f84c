package catalog

import "strings"

// MaxSnippetLen is the display cap for a content snippet, in bytes.
const MaxSnippetLen = 160

// NormalizeSnippet collapses runs of whitespace and trims the ends.
func NormalizeSnippet(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContentPool flattens every objective's bullets into one distractor pool.
// Entries are whitespace-normalized, deduplicated, and dropped when longer
// than MaxSnippetLen. An empty result falls back to objective titles.
func (c *Core) ContentPool() []string {
	pool := collect(c.Objectives, func(o Objective) []string { return o.Bullets })
	if len(pool) == 0 {
		pool = collect(c.Objectives, func(o Objective) []string { return []string{o.Title} })
	}
	return pool
}

// UsableBullets returns the normalized bullets of o that fit the display cap.
func UsableBullets(o Objective) []string {
	return collect([]Objective{o}, func(o Objective) []string { return o.Bullets })
}

func collect(objectives []Objective, field func(Objective) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range objectives {
		for _, s := range field(o) {
			s = NormalizeSnippet(s)
			if s == "" || len(s) > MaxSnippetLen || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
