package itemgen

import (
	"context"
	"fmt"

	"github.com/abhisek/examprep/internal/exam"
)

// MaxBatchSize is the hard cap on plan items per synthesis request.
const MaxBatchSize = 20

// Synthesizer produces one RawItem per requested PlanItem.
type Synthesizer interface {
	// Synthesize returns exactly len(req.Items) items. Remote strategies
	// return them in plan order.
	Synthesize(ctx context.Context, req BatchRequest) ([]exam.RawItem, error)
}

// BatchRequest is one unit of work handed to a Synthesizer.
type BatchRequest struct {
	Core       string          `json:"core"`
	Items      []exam.PlanItem `json:"items"`
	Difficulty exam.Difficulty `json:"difficulty"`
	SessionID  string          `json:"sessionId"`
	BatchIndex int             `json:"batchIndex"`
}

// Validate checks the request contract: a known difficulty and
// 1..MaxBatchSize items, each with an objective id, title and answer type.
// An empty difficulty means medium.
func (r BatchRequest) Validate() error {
	if _, err := exam.ParseDifficulty(string(r.Difficulty)); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	if len(r.Items) > MaxBatchSize {
		return fmt.Errorf("items has %d entries, max %d", len(r.Items), MaxBatchSize)
	}
	for i, it := range r.Items {
		if it.ObjectiveID == "" {
			return fmt.Errorf("items[%d]: objectiveId is required", i)
		}
		if it.ObjectiveTitle == "" {
			return fmt.Errorf("items[%d]: objectiveTitle is required", i)
		}
		if !it.AnswerType.Valid() {
			return fmt.Errorf("items[%d]: invalid answerType %q", i, it.AnswerType)
		}
	}
	return nil
}
