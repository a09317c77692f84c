package question

import (
	"encoding/json"

	"github.com/abhisek/examprep/internal/exam"
)

// Option is a displayable entry with a synthetic id.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Body is the answer-type specific part of a Question. Implementations are
// Choice, Order and Match.
type Body interface {
	answerType() exam.AnswerType
}

// Choice is a single- or multi-select question. Correct holds option ids.
type Choice struct {
	Options  []Option
	Correct  []string
	Multiple bool
}

func (c Choice) answerType() exam.AnswerType {
	if c.Multiple {
		return exam.AnswerMulti
	}
	return exam.AnswerSingle
}

// Order is a pbq-order question. Steps are in display order; Correct lists
// step texts in the canonical sequence.
type Order struct {
	Steps   []Option
	Correct []string
}

func (Order) answerType() exam.AnswerType { return exam.AnswerPBQOrder }

// Match is a pbq-match question. Correct holds "<left>=><right>" strings.
type Match struct {
	Left    []Option
	Right   []Option
	Correct []string
}

func (Match) answerType() exam.AnswerType { return exam.AnswerPBQMatch }

// Question is a normalized, scoreable item.
type Question struct {
	ID               string
	Domain           string
	ObjectiveID      string
	ObjectiveTitle   string
	ObjectiveBullets []string
	Prompt           string
	Explanation      string
	Body             Body
}

// AnswerType derives the answer type from the body.
func (q Question) AnswerType() exam.AnswerType {
	if q.Body == nil {
		return ""
	}
	return q.Body.answerType()
}

// PairKey encodes one match pairing in its canonical form.
func PairKey(left, right string) string {
	return left + "=>" + right
}

type questionJSON struct {
	ID             string          `json:"id"`
	AnswerType     exam.AnswerType `json:"answerType"`
	Domain         string          `json:"domain"`
	ObjectiveID    string          `json:"objectiveId"`
	ObjectiveTitle string          `json:"objectiveTitle"`
	Prompt         string          `json:"prompt"`
	Explanation    string          `json:"explanation"`
	Options        []Option        `json:"options,omitempty"`
	Steps          []Option        `json:"steps,omitempty"`
	Left           []Option        `json:"left,omitempty"`
	Right          []Option        `json:"right,omitempty"`
	Correct        []string        `json:"correct"`
}

// MarshalJSON emits a flat view of the question for export.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:             q.ID,
		AnswerType:     q.AnswerType(),
		Domain:         q.Domain,
		ObjectiveID:    q.ObjectiveID,
		ObjectiveTitle: q.ObjectiveTitle,
		Prompt:         q.Prompt,
		Explanation:    q.Explanation,
		Correct:        []string{},
	}
	switch b := q.Body.(type) {
	case Choice:
		out.Options, out.Correct = b.Options, b.Correct
	case Order:
		out.Steps, out.Correct = b.Steps, b.Correct
	case Match:
		out.Left, out.Right, out.Correct = b.Left, b.Right, b.Correct
	}
	if out.Correct == nil {
		out.Correct = []string{}
	}
	return json.Marshal(out)
}
