package exam

import "fmt"

// AnswerType describes how an item is answered.
type AnswerType string

const (
	AnswerSingle   AnswerType = "single"
	AnswerMulti    AnswerType = "multi"
	AnswerPBQOrder AnswerType = "pbq-order"
	AnswerPBQMatch AnswerType = "pbq-match"
)

// AllAnswerTypes returns every answer type in a stable order.
func AllAnswerTypes() []AnswerType {
	return []AnswerType{AnswerSingle, AnswerMulti, AnswerPBQOrder, AnswerPBQMatch}
}

// Valid reports whether t is a known answer type.
func (t AnswerType) Valid() bool {
	switch t {
	case AnswerSingle, AnswerMulti, AnswerPBQOrder, AnswerPBQMatch:
		return true
	}
	return false
}

// IsPBQ reports whether t is a performance-based type.
func (t AnswerType) IsPBQ() bool {
	return t == AnswerPBQOrder || t == AnswerPBQMatch
}

// Difficulty is the requested difficulty for generated items.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty string. Empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("invalid difficulty %q: must be easy, medium, or hard", s)
}

// PlanItem is a request to produce one question. Never mutated after creation.
type PlanItem struct {
	DomainNumber     string     `json:"domainNumber"`
	DomainLabel      string     `json:"domainLabel"`
	ObjectiveID      string     `json:"objectiveId"`
	ObjectiveTitle   string     `json:"objectiveTitle"`
	ObjectiveBullets []string   `json:"objectiveBullets"`
	AnswerType       AnswerType `json:"answerType"`
}

// Meta holds the fields shared by every item regardless of answer type.
type Meta struct {
	Domain           string
	ObjectiveID      string
	ObjectiveTitle   string
	ObjectiveBullets []string
	Prompt           string
	Explanation      string
}

// Body is the type-specific part of a RawItem. The set of implementations
// is closed: ChoiceBody, OrderBody and MatchBody.
type Body interface {
	answerType() AnswerType
}

// ChoiceBody is a single- or multi-select item.
type ChoiceBody struct {
	Options        []string
	CorrectIndices []int
	Multiple       bool
}

func (b ChoiceBody) answerType() AnswerType {
	if b.Multiple {
		return AnswerMulti
	}
	return AnswerSingle
}

// OrderBody is a pbq-order item. Items is the displayed order; CorrectOrder
// lists indices into Items in the canonical sequence.
type OrderBody struct {
	Items        []string
	CorrectOrder []int
}

func (OrderBody) answerType() AnswerType { return AnswerPBQOrder }

// Pair links an entry of the left column to an entry of the right column.
type Pair struct {
	LeftIndex  int `json:"leftIndex"`
	RightIndex int `json:"rightIndex"`
}

// MatchBody is a pbq-match item.
type MatchBody struct {
	Left         []string
	Right        []string
	CorrectPairs []Pair
}

func (MatchBody) answerType() AnswerType { return AnswerPBQMatch }

// RawItem is question content before normalization.
type RawItem struct {
	Meta
	Body Body
}

// AnswerType derives the answer type from the body.
func (r RawItem) AnswerType() AnswerType {
	if r.Body == nil {
		return ""
	}
	return r.Body.answerType()
}

// MetaFromPlan copies the plan-derived common fields.
func MetaFromPlan(p PlanItem) Meta {
	return Meta{
		Domain:           p.DomainLabel,
		ObjectiveID:      p.ObjectiveID,
		ObjectiveTitle:   p.ObjectiveTitle,
		ObjectiveBullets: append([]string(nil), p.ObjectiveBullets...),
	}
}
