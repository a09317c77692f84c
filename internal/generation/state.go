package generation

import (
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

// DefaultBatchSize is used when a state is created with a non-positive
// batch size.
const DefaultBatchSize = 10

// Config holds the request parameters a generation was started with.
type Config struct {
	Difficulty exam.Difficulty `json:"difficulty"`
	Length     int             `json:"length"`
	PBQCount   int             `json:"pbqCount"`
}

// State is a resumable generation checkpoint. It is a plain record:
// transitions return a new State and the caller persists it.
type State struct {
	SessionID     string          `json:"sessionId"`
	Core          string          `json:"core"`
	Config        Config          `json:"config"`
	Plan          []exam.PlanItem `json:"plan"`
	Collected     []exam.RawItem  `json:"collected"`
	NextPlanIndex int             `json:"nextPlanIndex"`
	BatchSize     int             `json:"batchSize"`
	LastError     string          `json:"lastError,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewState creates the initial checkpoint for plan. batchSize is clamped
// to 1..itemgen.MaxBatchSize.
func NewState(sessionID, core string, cfg Config, plan []exam.PlanItem, batchSize int, now time.Time) State {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return State{
		SessionID: sessionID,
		Core:      core,
		Config:    cfg,
		Plan:      slices.Clone(plan),
		Collected: []exam.RawItem{},
		BatchSize: min(batchSize, itemgen.MaxBatchSize),
		UpdatedAt: now,
	}
}

// Validate checks the state invariants.
func (s State) Validate() error {
	if s.SessionID == "" {
		return fmt.Errorf("generation state: empty session id")
	}
	if s.NextPlanIndex < 0 || s.NextPlanIndex > len(s.Plan) {
		return fmt.Errorf("generation state %s: next index %d outside plan of %d", s.SessionID, s.NextPlanIndex, len(s.Plan))
	}
	if len(s.Collected) != s.NextPlanIndex {
		return fmt.Errorf("generation state %s: %d collected items, next index %d", s.SessionID, len(s.Collected), s.NextPlanIndex)
	}
	if s.BatchSize < 1 || s.BatchSize > itemgen.MaxBatchSize {
		return fmt.Errorf("generation state %s: batch size %d outside 1-%d", s.SessionID, s.BatchSize, itemgen.MaxBatchSize)
	}
	return nil
}

// Done reports whether every plan item has been collected.
func (s State) Done() bool {
	return s.NextPlanIndex >= len(s.Plan)
}

// BatchIndex is the zero-based index of the next batch.
func (s State) BatchIndex() int {
	return s.NextPlanIndex / s.BatchSize
}

// NextBatch returns the request for the plan items starting at
// NextPlanIndex. ok is false when the plan is exhausted.
func (s State) NextBatch() (req itemgen.BatchRequest, ok bool) {
	if s.Done() {
		return itemgen.BatchRequest{}, false
	}
	end := min(s.NextPlanIndex+s.BatchSize, len(s.Plan))
	return itemgen.BatchRequest{
		Core:       s.Core,
		Items:      slices.Clone(s.Plan[s.NextPlanIndex:end]),
		Difficulty: s.Config.Difficulty,
		SessionID:  s.SessionID,
		BatchIndex: s.BatchIndex(),
	}, true
}

// Advance returns the state after a validated batch: items appended, index
// moved past the batch, error cleared. items must match the next batch in
// length and answer types.
func (s State) Advance(items []exam.RawItem, now time.Time) (State, error) {
	req, ok := s.NextBatch()
	if !ok {
		return s, fmt.Errorf("generation state %s: plan already complete", s.SessionID)
	}
	if len(items) != len(req.Items) {
		return s, fmt.Errorf("batch %d: expected %d items, got %d", req.BatchIndex, len(req.Items), len(items))
	}
	for i, it := range items {
		if it.AnswerType() != req.Items[i].AnswerType {
			return s, fmt.Errorf("batch %d: item %d has answer type %q, plan wants %q",
				req.BatchIndex, i, it.AnswerType(), req.Items[i].AnswerType)
		}
	}

	next := s
	next.Collected = append(slices.Clone(s.Collected), items...)
	next.NextPlanIndex += len(items)
	next.LastError = ""
	next.UpdatedAt = now
	return next, nil
}

// Fail returns the state after an exhausted batch: index unchanged, error
// recorded.
func (s State) Fail(err error, now time.Time) State {
	next := s
	next.LastError = err.Error()
	next.UpdatedAt = now
	return next
}
