package itemgen

import (
	"fmt"

	"github.com/abhisek/examprep/internal/exam"
)

// Validator checks a synthesized batch.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if the batch passes. items has already been
	// decoded; req is the batch it was produced for.
	Validate(items []exam.RawItem, req BatchRequest) *ValidationError
}

// ValidationError describes why a batch failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// RunValidators runs vs in order and returns the first failure.
func RunValidators(vs []Validator, items []exam.RawItem, req BatchRequest) *ValidationError {
	for _, v := range vs {
		if verr := v.Validate(items, req); verr != nil {
			return verr
		}
	}
	return nil
}
