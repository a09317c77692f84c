package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
	"github.com/abhisek/examprep/internal/plan"
	"github.com/abhisek/examprep/internal/question"
)

func choiceQ(multiple bool, correct ...int) question.Question {
	return question.Normalize("q1", exam.RawItem{
		Meta: exam.Meta{Domain: "Security"},
		Body: exam.ChoiceBody{Options: []string{"a", "b", "c", "d", "e"}, CorrectIndices: correct, Multiple: multiple},
	})
}

func TestCheck_Single(t *testing.T) {
	q := choiceQ(false, 1)
	assert.True(t, Check(q, Answer{OptionIDs: []string{"q1-o2"}}))
	assert.False(t, Check(q, Answer{OptionIDs: []string{"q1-o1"}}))
	assert.False(t, Check(q, Answer{OptionIDs: []string{"q1-o2", "q1-o3"}}), "superset is wrong")
	assert.False(t, Check(q, Answer{}), "empty is wrong")
}

func TestCheck_Multi(t *testing.T) {
	q := choiceQ(true, 0, 3)
	assert.True(t, Check(q, Answer{OptionIDs: []string{"q1-o4", "q1-o1"}}), "order does not matter")
	assert.False(t, Check(q, Answer{OptionIDs: []string{"q1-o1"}}), "subset is wrong")
	assert.False(t, Check(q, Answer{OptionIDs: []string{"q1-o1", "q1-o4", "q1-o5"}}), "superset is wrong")
}

func TestCheck_Order(t *testing.T) {
	q := question.Normalize("q1", exam.RawItem{Body: exam.OrderBody{
		Items:        []string{"Test", "Identify", "Document", "Theory"},
		CorrectOrder: []int{1, 3, 0, 2},
	}})
	assert.True(t, Check(q, Answer{Order: []string{"Identify", "Theory", "Test", "Document"}}))

	perms := [][]string{
		{"Theory", "Identify", "Test", "Document"},
		{"Identify", "Theory", "Document", "Test"},
		{"Document", "Test", "Theory", "Identify"},
		{"Identify", "Theory", "Test"},
	}
	for _, p := range perms {
		assert.False(t, Check(q, Answer{Order: p}), "%v", p)
	}
}

func TestCheck_Match(t *testing.T) {
	q := question.Normalize("q1", exam.RawItem{Body: exam.MatchBody{
		Left:         []string{"SSH", "DNS", "HTTPS"},
		Right:        []string{"443", "22", "53"},
		CorrectPairs: []exam.Pair{{LeftIndex: 0, RightIndex: 1}, {LeftIndex: 1, RightIndex: 2}, {LeftIndex: 2, RightIndex: 0}},
	}})
	assert.True(t, Check(q, Answer{Pairs: []string{"DNS=>53", "HTTPS=>443", "SSH=>22"}}))
	assert.False(t, Check(q, Answer{Pairs: []string{"DNS=>53", "HTTPS=>22", "SSH=>443"}}))
	assert.False(t, Check(q, Answer{Pairs: []string{"DNS=>53", "HTTPS=>443"}}))
}

func TestScore_CountsAndDomains(t *testing.T) {
	qs := question.NormalizeAll([]exam.RawItem{
		{Meta: exam.Meta{Domain: "Networking"}, Body: exam.ChoiceBody{Options: []string{"a", "b", "c", "d"}, CorrectIndices: []int{0}}},
		{Meta: exam.Meta{Domain: "Hardware"}, Body: exam.ChoiceBody{Options: []string{"a", "b", "c", "d"}, CorrectIndices: []int{1}}},
		{Meta: exam.Meta{Domain: "Networking"}, Body: exam.ChoiceBody{Options: []string{"a", "b", "c", "d"}, CorrectIndices: []int{2}}},
	})
	res := Score(qs, map[string]Answer{
		"q1": {OptionIDs: []string{"q1-o1"}},
		"q2": {OptionIDs: []string{"q2-o1"}},
		"q3": {OptionIDs: []string{"q3-o3"}},
	})

	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 66.7, res.Percent)
	require.Len(t, res.ByDomain, 2)
	assert.Equal(t, DomainScore{Domain: "Networking", Correct: 2, Total: 2, Percent: 100}, res.ByDomain[0])
	assert.Equal(t, DomainScore{Domain: "Hardware", Correct: 0, Total: 1, Percent: 0}, res.ByDomain[1])
	assert.False(t, res.Scored[1].Correct)

	unanswered := Score(qs, nil)
	assert.Equal(t, 0, unanswered.CorrectCount)
	assert.False(t, unanswered.Scored[0].Answered)
}

func TestScore_Empty(t *testing.T) {
	res := Score(nil, nil)
	assert.Equal(t, 0.0, res.Percent)
	assert.Equal(t, 0, res.Total)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 55.6, Percent(50, 90))
	assert.Equal(t, 100.0, Percent(90, 90))
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 0.0, Percent(0, 0))
}

func TestScore_FullCore1SessionAllCorrect(t *testing.T) {
	core, err := catalog.Default().Core("core1")
	require.NoError(t, err)
	items, err := plan.NewSeededBuilder(1).Build(core, plan.Options{PBQCount: 5})
	require.NoError(t, err)

	raw, err := itemgen.NewOffline(catalog.Default(), itemgen.OfflineOptions{}).Synthesize(
		context.Background(),
		itemgen.BatchRequest{Core: "core1", SessionID: "full", Difficulty: exam.DifficultyMedium, Items: items},
	)
	require.NoError(t, err)

	qs := question.NormalizeAll(raw)
	require.Len(t, qs, 90)

	res := Score(qs, AllCorrect(qs))
	assert.Equal(t, 100.0, res.Percent)
	assert.Equal(t, 90, res.CorrectCount)

	again := Score(qs, AllCorrect(qs))
	assert.Equal(t, res, again, "scoring is repeatable")
}
