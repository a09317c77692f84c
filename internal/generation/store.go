package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/store"
)

// ErrStateNotFound is returned when no checkpoint exists for a session.
var ErrStateNotFound = errors.New("generation state not found")

// StateStore persists checkpoints. Save must replace atomically.
type StateStore interface {
	Save(ctx context.Context, s State) error
	Load(ctx context.Context, sessionID string) (State, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]State, error)
}

// RepoStore adapts a store.StateRepo to StateStore.
type RepoStore struct {
	repo store.StateRepo
}

// NewRepoStore creates a RepoStore over repo.
func NewRepoStore(repo store.StateRepo) *RepoStore {
	return &RepoStore{repo: repo}
}

func (r *RepoStore) Save(ctx context.Context, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode generation state: %w", err)
	}
	return r.repo.Save(ctx, store.StateRecord{
		SessionID:     s.SessionID,
		Core:          s.Core,
		NextPlanIndex: s.NextPlanIndex,
		PlanLength:    len(s.Plan),
		LastError:     s.LastError,
		Data:          data,
		UpdatedAt:     s.UpdatedAt,
	})
}

func (r *RepoStore) Load(ctx context.Context, sessionID string) (State, error) {
	rec, err := r.repo.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if rec == nil {
		return State{}, fmt.Errorf("%w: %s", ErrStateNotFound, sessionID)
	}
	return decodeState(rec.Data)
}

func (r *RepoStore) Delete(ctx context.Context, sessionID string) error {
	return r.repo.Delete(ctx, sessionID)
}

func (r *RepoStore) List(ctx context.Context) ([]State, error) {
	recs, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, len(recs))
	for _, rec := range recs {
		s, err := decodeState(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", rec.SessionID, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("decode generation state: %w", err)
	}
	if s.Collected == nil {
		s.Collected = []exam.RawItem{}
	}
	return s, nil
}
