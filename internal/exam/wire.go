package exam

import (
	"encoding/json"
	"fmt"
)

// WireItem is the flat JSON shape exchanged with the generation backend and
// written to storage. Fields that do not apply to the answer type are empty.
type WireItem struct {
	AnswerType       AnswerType `json:"answerType"`
	Domain           string     `json:"domain"`
	ObjectiveID      string     `json:"objectiveId"`
	ObjectiveTitle   string     `json:"objectiveTitle"`
	ObjectiveBullets []string   `json:"objectiveBullets"`
	Prompt           string     `json:"prompt"`
	Explanation      string     `json:"explanation"`
	Options          []string   `json:"options"`
	CorrectIndices   []int      `json:"correctIndices"`
	OrderItems       []string   `json:"orderItems"`
	CorrectOrder     []int      `json:"correctOrder"`
	Left             []string   `json:"left"`
	Right            []string   `json:"right"`
	CorrectPairs     []Pair     `json:"correctPairs"`
}

// Wire flattens r into its wire form. Empty arrays are emitted as [] rather
// than null so the output always carries every key.
func (r RawItem) Wire() WireItem {
	w := WireItem{
		AnswerType:       r.AnswerType(),
		Domain:           r.Domain,
		ObjectiveID:      r.ObjectiveID,
		ObjectiveTitle:   r.ObjectiveTitle,
		ObjectiveBullets: nonNil(r.ObjectiveBullets),
		Prompt:           r.Prompt,
		Explanation:      r.Explanation,
		Options:          []string{},
		CorrectIndices:   []int{},
		OrderItems:       []string{},
		CorrectOrder:     []int{},
		Left:             []string{},
		Right:            []string{},
		CorrectPairs:     []Pair{},
	}
	switch b := r.Body.(type) {
	case ChoiceBody:
		w.Options = nonNil(b.Options)
		w.CorrectIndices = nonNilInts(b.CorrectIndices)
	case OrderBody:
		w.OrderItems = nonNil(b.Items)
		w.CorrectOrder = nonNilInts(b.CorrectOrder)
	case MatchBody:
		w.Left = nonNil(b.Left)
		w.Right = nonNil(b.Right)
		if b.CorrectPairs != nil {
			w.CorrectPairs = b.CorrectPairs
		}
	}
	return w
}

// RawItem rebuilds the tagged variant from the wire form. Only the fields
// belonging to the declared answer type are read.
func (w WireItem) RawItem() (RawItem, error) {
	item := RawItem{Meta: Meta{
		Domain:           w.Domain,
		ObjectiveID:      w.ObjectiveID,
		ObjectiveTitle:   w.ObjectiveTitle,
		ObjectiveBullets: w.ObjectiveBullets,
		Prompt:           w.Prompt,
		Explanation:      w.Explanation,
	}}
	switch w.AnswerType {
	case AnswerSingle, AnswerMulti:
		item.Body = ChoiceBody{
			Options:        w.Options,
			CorrectIndices: w.CorrectIndices,
			Multiple:       w.AnswerType == AnswerMulti,
		}
	case AnswerPBQOrder:
		item.Body = OrderBody{Items: w.OrderItems, CorrectOrder: w.CorrectOrder}
	case AnswerPBQMatch:
		item.Body = MatchBody{Left: w.Left, Right: w.Right, CorrectPairs: w.CorrectPairs}
	default:
		return RawItem{}, fmt.Errorf("unknown answerType %q", w.AnswerType)
	}
	return item, nil
}

func (r RawItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Wire())
}

func (r *RawItem) UnmarshalJSON(data []byte) error {
	var w WireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	item, err := w.RawItem()
	if err != nil {
		return err
	}
	*r = item
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
