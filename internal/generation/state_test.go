package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/store"
)

func TestNewState_ClampsBatchSize(t *testing.T) {
	s := NewState("s", "core1", Config{}, nil, 50, time.Time{})
	assert.Equal(t, 20, s.BatchSize)
	s = NewState("s", "core1", Config{}, nil, 0, time.Time{})
	assert.Equal(t, DefaultBatchSize, s.BatchSize)
}

func TestState_AdvanceIsPure(t *testing.T) {
	s := newState(t, 12, 5)
	req, ok := s.NextBatch()
	require.True(t, ok)
	items, err := offline().Synthesize(context.Background(), req)
	require.NoError(t, err)

	now := time.Unix(100, 0)
	next, err := s.Advance(items, now)
	require.NoError(t, err)
	assert.Equal(t, 0, s.NextPlanIndex, "receiver is unchanged")
	assert.Empty(t, s.Collected)
	assert.Equal(t, 5, next.NextPlanIndex)
	assert.Equal(t, now, next.UpdatedAt)
	require.NoError(t, next.Validate())

	req, _ = next.NextBatch()
	assert.Equal(t, 1, req.BatchIndex)
	assert.Equal(t, s.Plan[5:10], req.Items)

	_, err = next.Advance(items[:4], now)
	assert.Error(t, err)
}

func TestState_Fail(t *testing.T) {
	s := newState(t, 10, 5)
	failed := s.Fail(errors.New("boom"), time.Unix(5, 0))
	assert.Equal(t, "boom", failed.LastError)
	assert.Equal(t, 0, failed.NextPlanIndex)
	assert.Empty(t, s.LastError)
}

func TestState_Validate(t *testing.T) {
	s := newState(t, 10, 5)
	require.NoError(t, s.Validate())

	bad := s
	bad.NextPlanIndex = 3
	assert.Error(t, bad.Validate())

	bad = s
	bad.NextPlanIndex = 11
	assert.Error(t, bad.Validate())

	bad = s
	bad.SessionID = ""
	assert.Error(t, bad.Validate())
}

func TestRepoStore_RoundTrip(t *testing.T) {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rs := NewRepoStore(db.StateRepo())
	ctx := context.Background()

	_, err = rs.Load(ctx, "sess-orch")
	assert.ErrorIs(t, err, ErrStateNotFound)

	s := newState(t, 10, 5)
	req, _ := s.NextBatch()
	items, err := offline().Synthesize(ctx, req)
	require.NoError(t, err)
	s, err = s.Advance(items, time.Unix(10, 0).UTC())
	require.NoError(t, err)
	require.NoError(t, rs.Save(ctx, s))

	got, err := rs.Load(ctx, "sess-orch")
	require.NoError(t, err)
	assert.Equal(t, 5, got.NextPlanIndex)
	assert.Equal(t, s.Plan, got.Plan)
	require.Len(t, got.Collected, 5)
	for i := range items {
		assert.Equal(t, items[i].Wire(), got.Collected[i].Wire())
	}
	assert.Equal(t, exam.DifficultyMedium, got.Config.Difficulty)

	all, err := rs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, rs.Delete(ctx, "sess-orch"))
	_, err = rs.Load(ctx, "sess-orch")
	assert.ErrorIs(t, err, ErrStateNotFound)
}
