package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

func sampleRequest() itemgen.BatchRequest {
	return itemgen.BatchRequest{
		Core:       "core2",
		SessionID:  "s1",
		Difficulty: exam.DifficultyHard,
		Items: []exam.PlanItem{
			{DomainNumber: "2.0", DomainLabel: "Security", ObjectiveID: "2.1", ObjectiveTitle: "Security measures", AnswerType: exam.AnswerSingle},
		},
	}
}

func sampleItems() []exam.RawItem {
	return []exam.RawItem{{
		Meta: exam.Meta{Domain: "Security", ObjectiveID: "2.1", Prompt: "Which control stops tailgating?"},
		Body: exam.ChoiceBody{Options: []string{"Access control vestibule", "Badge", "Bollard", "Fence"}, CorrectIndices: []int{0}},
	}}
}

func TestFingerprint(t *testing.T) {
	req := sampleRequest()
	fp := Fingerprint(req)
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint(sampleRequest()))

	for name, mutate := range map[string]func(*itemgen.BatchRequest){
		"core":       func(r *itemgen.BatchRequest) { r.Core = "core1" },
		"session":    func(r *itemgen.BatchRequest) { r.SessionID = "s2" },
		"batch":      func(r *itemgen.BatchRequest) { r.BatchIndex = 1 },
		"difficulty": func(r *itemgen.BatchRequest) { r.Difficulty = exam.DifficultyEasy },
		"item":       func(r *itemgen.BatchRequest) { r.Items[0].AnswerType = exam.AnswerMulti },
	} {
		r := sampleRequest()
		mutate(&r)
		assert.NotEqual(t, fp, Fingerprint(r), name)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(func() time.Time { return now })
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "fp", sampleItems(), time.Minute))
	got, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleItems(), got)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "fp")
	assert.False(t, ok, "entry must expire at its TTL")
	assert.Equal(t, 0, c.Len())
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client, "")
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "fp", sampleItems(), time.Hour))
	assert.True(t, mr.Exists(DefaultPrefix+"fp"))

	got, ok, err := c.Get(ctx, "fp")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, exam.AnswerSingle, got[0].AnswerType())
	assert.Equal(t, "Which control stops tailgating?", got[0].Prompt)

	mr.FastForward(time.Hour)
	_, ok, err = c.Get(ctx, "fp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, mr.Set("p:fp", "not json"))
	_, ok, err := NewRedisCache(client, "p:").Get(context.Background(), "fp")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
