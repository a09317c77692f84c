package itemgen

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/plan"
)

func core1Request(t *testing.T) BatchRequest {
	t.Helper()
	core, err := catalog.Default().Core("core1")
	require.NoError(t, err)
	items, err := plan.NewSeededBuilder(42).Build(core, plan.Options{PBQCount: 8})
	require.NoError(t, err)
	return BatchRequest{Core: "core1", SessionID: "offline-1", Difficulty: exam.DifficultyMedium, Items: items}
}

func TestOffline_Deterministic(t *testing.T) {
	req := core1Request(t)
	s := NewOffline(catalog.Default(), OfflineOptions{})

	a, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	b, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)

	rawA, err := Encode(a)
	require.NoError(t, err)
	rawB, err := Encode(b)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(rawA, rawB), "same request must produce byte-identical output")

	req.SessionID = "offline-2"
	c, err := s.Synthesize(context.Background(), req)
	require.NoError(t, err)
	rawC, _ := Encode(c)
	assert.False(t, bytes.Equal(rawA, rawC), "different session ids should diverge")
}

func TestOffline_ItemsPassValidators(t *testing.T) {
	for _, d := range []exam.Difficulty{exam.DifficultyEasy, exam.DifficultyMedium, exam.DifficultyHard} {
		req := core1Request(t)
		req.Difficulty = d
		items, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, items, len(req.Items))

		verr := RunValidators(DefaultConfig().Validators, items, req)
		require.Nil(t, verr, "difficulty %s: %v", d, verr)

		for i, it := range items {
			assert.Equal(t, req.Items[i].ObjectiveID, it.ObjectiveID)
			assert.Equal(t, req.Items[i].DomainLabel, it.Domain)
		}
	}
}

func TestOffline_ChoiceCaps(t *testing.T) {
	items, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(context.Background(), core1Request(t))
	require.NoError(t, err)

	for _, it := range items {
		b, ok := it.Body.(exam.ChoiceBody)
		if !ok {
			continue
		}
		if b.Multiple {
			assert.Len(t, b.Options, offlineMultiOptions)
			assert.Len(t, b.CorrectIndices, offlineMultiCorrect)
			assert.Contains(t, it.Prompt, "(Select TWO.)")
		} else {
			assert.Len(t, b.Options, offlineSingleOptions)
			assert.Len(t, b.CorrectIndices, 1)
		}
	}
}

func TestOffline_MultiFallsBackToSingle(t *testing.T) {
	req := BatchRequest{Core: "core1", SessionID: "s", Items: []exam.PlanItem{{
		DomainNumber: "1.0", DomainLabel: "Mobile Devices", ObjectiveID: "1.9",
		ObjectiveTitle: "A lone objective", ObjectiveBullets: []string{"Only one usable bullet"},
		AnswerType: exam.AnswerMulti,
	}}}
	items, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, exam.AnswerSingle, items[0].AnswerType())

	b := items[0].Body.(exam.ChoiceBody)
	assert.Equal(t, "Only one usable bullet", b.Options[b.CorrectIndices[0]])
}

func TestOffline_OrderAndMatch(t *testing.T) {
	core, err := catalog.Default().Core("core2")
	require.NoError(t, err)

	req := BatchRequest{Core: "core2", SessionID: "pbq", Difficulty: exam.DifficultyHard}
	for range 6 {
		req.Items = append(req.Items,
			exam.PlanItem{ObjectiveID: "4.1", ObjectiveTitle: "Docs", AnswerType: exam.AnswerPBQOrder},
			exam.PlanItem{ObjectiveID: "4.1", ObjectiveTitle: "Docs", AnswerType: exam.AnswerPBQMatch},
		)
	}
	items, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(context.Background(), req)
	require.NoError(t, err)

	for _, it := range items {
		switch b := it.Body.(type) {
		case exam.OrderBody:
			canonical := make([]string, len(b.CorrectOrder))
			for pos, idx := range b.CorrectOrder {
				canonical[pos] = b.Items[idx]
			}
			assert.True(t, hasOrderTemplate(core, canonical), "canonical order must be a template's step order")
			assert.NotEqual(t, canonical, b.Items, "displayed order should be shuffled")
		case exam.MatchBody:
			for _, p := range b.CorrectPairs {
				assert.True(t, hasMatchPair(core, b.Left[p.LeftIndex], b.Right[p.RightIndex]))
			}
		default:
			t.Fatalf("unexpected body %T", b)
		}
	}
}

func TestOffline_ShufflePlan(t *testing.T) {
	req := core1Request(t)
	items, err := NewOffline(catalog.Default(), OfflineOptions{ShufflePlan: true}).Synthesize(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, items, len(req.Items))

	var got, want []string
	for i := range items {
		got = append(got, items[i].ObjectiveID)
		want = append(want, req.Items[i].ObjectiveID)
	}
	assert.NotEqual(t, want, got, "items should leave plan order")
	slices.Sort(got)
	slices.Sort(want)
	assert.Equal(t, want, got, "shuffled output must be a permutation of the plan")
}

func TestOffline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(ctx, core1Request(t))
	assert.True(t, errors.Is(err, exam.ErrGenerationCancelled))
}

func TestOffline_UnknownCore(t *testing.T) {
	req := core1Request(t)
	req.Core = "core9"
	_, err := NewOffline(catalog.Default(), OfflineOptions{}).Synthesize(context.Background(), req)
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	base := Seed("s", "core1", exam.DifficultyEasy, 0)
	assert.Equal(t, base, Seed("s", "core1", exam.DifficultyEasy, 0))
	assert.NotEqual(t, base, Seed("s", "core1", exam.DifficultyEasy, 1))
	assert.NotEqual(t, base, Seed("s", "core2", exam.DifficultyEasy, 0))

	h := fnv.New32a()
	h.Write([]byte("s|core1|easy|3"))
	assert.Equal(t, h.Sum32(), Seed("s", "core1", exam.DifficultyEasy, 3))
}

func hasOrderTemplate(core *catalog.Core, steps []string) bool {
	for _, tpl := range core.OrderTemplates {
		if slices.Equal(tpl.Steps, steps) {
			return true
		}
	}
	return false
}

func hasMatchPair(core *catalog.Core, left, right string) bool {
	for _, tpl := range core.MatchTemplates {
		for _, p := range tpl.Pairs {
			if p.Left == left && p.Right == right {
				return true
			}
		}
	}
	return false
}
