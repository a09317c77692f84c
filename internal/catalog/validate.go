package catalog

import (
	"fmt"
	"strings"
)

// Template size limits. They match the cardinalities accepted for
// generated pbq-order and pbq-match items.
const (
	MinOrderSteps = 4
	MaxOrderSteps = 8
	MinMatchPairs = 3
	MaxMatchPairs = 8
)

// Validate checks every core in the catalogue.
func (c *Catalog) Validate() error {
	var errs []string
	for _, id := range c.CoreIDs() {
		if err := validateCore(c.cores[id]); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}

// validateCore performs all structural checks on one core.
// Returns a combined error describing all problems found, or nil if valid.
func validateCore(core *Core) error {
	var errs []string

	if core.Length <= 0 {
		errs = append(errs, fmt.Sprintf("length must be > 0, got %d", core.Length))
	}
	if len(core.Domains) == 0 {
		errs = append(errs, "no domains defined")
	}

	// Domains: unique numbers, positive weights
	domainSet := make(map[string]bool, len(core.Domains))
	for _, d := range core.Domains {
		if domainSet[d.Number] {
			errs = append(errs, fmt.Sprintf("duplicate domain number: %q", d.Number))
		}
		domainSet[d.Number] = true
		if d.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("domain %q: weight must be > 0, got %d", d.Number, d.Weight))
		}
		if d.Label == "" {
			errs = append(errs, fmt.Sprintf("domain %q has no label", d.Number))
		}
	}

	// Objectives: unique IDs, known domain, usable content
	idSet := make(map[string]bool, len(core.Objectives))
	populated := make(map[string]bool)
	for _, o := range core.Objectives {
		if idSet[o.ID] {
			errs = append(errs, fmt.Sprintf("duplicate objective ID: %q", o.ID))
		}
		idSet[o.ID] = true
		if !domainSet[o.Domain] {
			errs = append(errs, fmt.Sprintf("objective %q references nonexistent domain %q", o.ID, o.Domain))
		}
		populated[o.Domain] = true
		if o.Title == "" {
			errs = append(errs, fmt.Sprintf("objective %q has no title", o.ID))
		}
		if len(UsableBullets(o)) == 0 {
			errs = append(errs, fmt.Sprintf("objective %q has no usable bullets", o.ID))
		}
	}
	for _, d := range core.Domains {
		if !populated[d.Number] {
			errs = append(errs, fmt.Sprintf("domain %q has no objectives", d.Number))
		}
	}

	// PBQ templates
	if len(core.OrderTemplates) == 0 {
		errs = append(errs, "no order templates defined")
	}
	for _, t := range core.OrderTemplates {
		if n := len(t.Steps); n < MinOrderSteps || n > MaxOrderSteps {
			errs = append(errs, fmt.Sprintf("order template %q: want %d-%d steps, got %d", t.Title, MinOrderSteps, MaxOrderSteps, n))
		}
		if dup := firstDuplicate(t.Steps); dup != "" {
			errs = append(errs, fmt.Sprintf("order template %q: duplicate step %q", t.Title, dup))
		}
	}
	if len(core.MatchTemplates) == 0 {
		errs = append(errs, "no match templates defined")
	}
	for _, t := range core.MatchTemplates {
		if n := len(t.Pairs); n < MinMatchPairs || n > MaxMatchPairs {
			errs = append(errs, fmt.Sprintf("match template %q: want %d-%d pairs, got %d", t.Title, MinMatchPairs, MaxMatchPairs, n))
		}
		left := make([]string, len(t.Pairs))
		right := make([]string, len(t.Pairs))
		for i, p := range t.Pairs {
			left[i], right[i] = p.Left, p.Right
		}
		if dup := firstDuplicate(left); dup != "" {
			errs = append(errs, fmt.Sprintf("match template %q: duplicate left entry %q", t.Title, dup))
		}
		if dup := firstDuplicate(right); dup != "" {
			errs = append(errs, fmt.Sprintf("match template %q: duplicate right entry %q", t.Title, dup))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalogue %s validation failed:\n  %s", core.ID, strings.Join(errs, "\n  "))
	}
	return nil
}

func firstDuplicate(items []string) string {
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		key := strings.ToLower(NormalizeSnippet(s))
		if seen[key] {
			return s
		}
		seen[key] = true
	}
	return ""
}
