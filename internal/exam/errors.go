package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAllocation indicates bad weights or a bad total. Callers must
	// fix their configuration; retrying will not help.
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrGenerationInvalid indicates backend output failed validation after
	// the corrective retry.
	ErrGenerationInvalid = errors.New("generation invalid")

	// ErrGenerationTransport indicates the backend could not be reached or
	// returned an error unrelated to content.
	ErrGenerationTransport = errors.New("generation transport failure")

	// ErrGenerationCancelled indicates the caller cancelled generation.
	ErrGenerationCancelled = errors.New("generation cancelled")

	// ErrSessionIncomplete indicates the assembled question count does not
	// match the requested session length.
	ErrSessionIncomplete = errors.New("session incomplete")
)

// AllocationError describes why an allocation request was rejected.
type AllocationError struct {
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("invalid allocation: %s", e.Reason)
}

func (e *AllocationError) Unwrap() error { return ErrInvalidAllocation }

// BatchInvalidError carries the last validation failure of a batch whose
// corrective retry was exhausted.
type BatchInvalidError struct {
	Attempts int
	Reason   string
}

func (e *BatchInvalidError) Error() string {
	return fmt.Sprintf("generation invalid after %d attempts: %s", e.Attempts, e.Reason)
}

func (e *BatchInvalidError) Unwrap() error { return ErrGenerationInvalid }

// TransportError wraps a backend or network failure.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrGenerationTransport, e.Err} }

// SessionIncompleteError reports the count mismatch found at assembly time.
type SessionIncompleteError struct {
	Want int
	Got  int
}

func (e *SessionIncompleteError) Error() string {
	return fmt.Sprintf("session incomplete: want %d questions, got %d", e.Want, e.Got)
}

func (e *SessionIncompleteError) Unwrap() error { return ErrSessionIncomplete }

// Cancelled wraps a context error as ErrGenerationCancelled.
func Cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrGenerationCancelled, err)
}
