package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/generation"
	"github.com/abhisek/examprep/internal/itemgen"
	"github.com/abhisek/examprep/internal/plan"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/scoring"
	"github.com/abhisek/examprep/internal/store"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// ErrRemoteUnavailable is returned when a remote session is requested but
// no remote synthesizer is configured.
var ErrRemoteUnavailable = errors.New("no remote synthesizer configured")

// Assembler builds sessions from plans and persists them.
type Assembler struct {
	catalog  *catalog.Catalog
	states   generation.StateStore
	sessions store.SessionRepo
	orch     *generation.Orchestrator
	offline  itemgen.Synthesizer
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRemote enables remote generation through orch.
func WithRemote(orch *generation.Orchestrator) Option {
	return func(a *Assembler) { a.orch = orch }
}

// WithOffline replaces the default offline synthesizer.
func WithOffline(s itemgen.Synthesizer) Option {
	return func(a *Assembler) { a.offline = s }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// WithIDGenerator sets the session id source. The default is uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(a *Assembler) { a.newID = fn }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// New creates an Assembler. Offline generation is always available.
func New(cat *catalog.Catalog, states generation.StateStore, sessions store.SessionRepo, opts ...Option) *Assembler {
	a := &Assembler{
		catalog:  cat,
		states:   states,
		sessions: sessions,
		offline:  itemgen.NewOffline(cat, itemgen.OfflineOptions{}),
		logger:   slog.Default(),
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start plans and generates a new session. Offline sessions complete in
// one call; remote sessions may pause and be resumed later.
func (a *Assembler) Start(ctx context.Context, req Request) (Outcome, error) {
	core, err := a.catalog.Core(req.Core)
	if err != nil {
		return Outcome{}, err
	}
	difficulty, err := exam.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		return Outcome{}, err
	}
	if !req.Offline && a.orch == nil {
		return Outcome{}, ErrRemoteUnavailable
	}

	builder := plan.NewBuilder(nil)
	if req.PlanSeed != 0 {
		builder = plan.NewSeededBuilder(req.PlanSeed)
	}
	items, err := builder.Build(core, plan.Options{Length: req.Length, PBQCount: req.PBQCount})
	if err != nil {
		return Outcome{}, fmt.Errorf("build plan: %w", err)
	}

	id := a.newID()
	log := a.logger.With("session_id", id, "core", core.ID, "difficulty", difficulty)
	counts := plan.Counts(items)
	log.Info("plan built",
		"length", len(items),
		"pbq", counts[exam.AnswerPBQOrder]+counts[exam.AnswerPBQMatch],
		"multi", counts[exam.AnswerMulti],
	)

	if req.Offline {
		raw, err := a.offline.Synthesize(ctx, itemgen.BatchRequest{
			Core:       core.ID,
			Items:      items,
			Difficulty: difficulty,
			SessionID:  id,
		})
		if err != nil {
			return Outcome{SessionID: id}, err
		}
		sess, err := a.finalize(ctx, id, core.ID, difficulty, ModeOffline, len(items), raw)
		if err != nil {
			return Outcome{SessionID: id}, err
		}
		return completed(sess), nil
	}

	cfg := generation.Config{Difficulty: difficulty, Length: len(items), PBQCount: req.PBQCount}
	state := generation.NewState(id, core.ID, cfg, items, req.BatchSize, a.now())
	res, err := a.orch.Start(ctx, state)
	if err != nil {
		return Outcome{SessionID: id}, err
	}
	return a.afterRun(ctx, res)
}

// Resume continues a paused remote session from its checkpoint.
func (a *Assembler) Resume(ctx context.Context, sessionID string) (Outcome, error) {
	if a.orch == nil {
		return Outcome{}, ErrRemoteUnavailable
	}
	res, err := a.orch.Resume(ctx, sessionID)
	if errors.Is(err, generation.ErrStateNotFound) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return Outcome{}, err
	}
	return a.afterRun(ctx, res)
}

func (a *Assembler) afterRun(ctx context.Context, res generation.Result) (Outcome, error) {
	s := res.State
	if res.Status != generation.StatusComplete {
		return Outcome{
			SessionID: s.SessionID,
			Paused:    true,
			Err:       res.Err,
			Collected: s.NextPlanIndex,
			Total:     len(s.Plan),
		}, nil
	}
	sess, err := a.finalize(ctx, s.SessionID, s.Core, s.Config.Difficulty, ModeRemote, len(s.Plan), s.Collected)
	if err != nil {
		return Outcome{SessionID: s.SessionID}, err
	}
	return completed(sess), nil
}

// finalize normalizes items, enforces the requested length, persists the
// session, and drops the generation checkpoint.
func (a *Assembler) finalize(ctx context.Context, id, core string, difficulty exam.Difficulty, mode Mode, want int, items []exam.RawItem) (*ExamSession, error) {
	questions := question.NormalizeAll(items)
	if len(questions) != want {
		return nil, &exam.SessionIncompleteError{Want: want, Got: len(questions)}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode session items: %w", err)
	}
	sess := &ExamSession{
		ID:         id,
		Core:       core,
		Difficulty: difficulty,
		Mode:       mode,
		CreatedAt:  a.now(),
		Items:      items,
		Questions:  questions,
	}
	err = a.sessions.SaveSession(ctx, store.SessionRecord{
		SessionID:     id,
		Core:          core,
		Difficulty:    string(difficulty),
		Mode:          string(mode),
		QuestionCount: len(questions),
		Data:          data,
		CreatedAt:     sess.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	if err := a.states.Delete(ctx, id); err != nil {
		a.logger.Warn("failed to delete generation state", "session_id", id, "error", err)
	}
	a.logger.Info("session assembled", "session_id", id, "questions", len(questions), "mode", mode)
	return sess, nil
}

// Discard removes a session and any checkpoint or results it has.
func (a *Assembler) Discard(ctx context.Context, sessionID string) error {
	if err := a.states.Delete(ctx, sessionID); err != nil {
		return err
	}
	return a.sessions.DeleteSession(ctx, sessionID)
}

// Get loads an assembled session.
func (a *Assembler) Get(ctx context.Context, sessionID string) (*ExamSession, error) {
	rec, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	var items []exam.RawItem
	if err := json.Unmarshal(rec.Data, &items); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &ExamSession{
		ID:         rec.SessionID,
		Core:       rec.Core,
		Difficulty: exam.Difficulty(rec.Difficulty),
		Mode:       Mode(rec.Mode),
		CreatedAt:  rec.CreatedAt,
		Items:      items,
		Questions:  question.NormalizeAll(items),
	}, nil
}

// List returns pending generations followed by assembled sessions, each
// newest first. limit bounds the assembled sessions; zero means no limit.
func (a *Assembler) List(ctx context.Context, limit int) ([]Summary, error) {
	states, err := a.states.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(states, func(x, y generation.State) int { return y.UpdatedAt.Compare(x.UpdatedAt) })

	var out []Summary
	for _, s := range states {
		out = append(out, Summary{
			SessionID:  s.SessionID,
			Core:       s.Core,
			Difficulty: string(s.Config.Difficulty),
			Mode:       ModeRemote,
			Status:     StatusPending,
			Collected:  s.NextPlanIndex,
			Total:      len(s.Plan),
			LastError:  s.LastError,
			UpdatedAt:  s.UpdatedAt,
		})
	}

	recs, err := a.sessions.ListSessions(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		out = append(out, Summary{
			SessionID:  r.SessionID,
			Core:       r.Core,
			Difficulty: r.Difficulty,
			Mode:       Mode(r.Mode),
			Status:     StatusReady,
			Collected:  r.QuestionCount,
			Total:      r.QuestionCount,
			UpdatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// Grade scores answers against an assembled session and records the result.
func (a *Assembler) Grade(ctx context.Context, sessionID string, answers map[string]scoring.Answer) (scoring.Result, error) {
	sess, err := a.Get(ctx, sessionID)
	if err != nil {
		return scoring.Result{}, err
	}
	res := scoring.Score(sess.Questions, answers)

	data, err := json.Marshal(res)
	if err != nil {
		return res, fmt.Errorf("encode result: %w", err)
	}
	_, err = a.sessions.AppendResult(ctx, store.ResultRecord{
		SessionID:    sessionID,
		Percent:      res.Percent,
		CorrectCount: res.CorrectCount,
		Total:        res.Total,
		Data:         data,
		CreatedAt:    a.now(),
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// Results returns the recorded results for a session, oldest first.
func (a *Assembler) Results(ctx context.Context, sessionID string) ([]scoring.Result, error) {
	recs, err := a.sessions.Results(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.Result, 0, len(recs))
	for _, r := range recs {
		var res scoring.Result
		if err := json.Unmarshal(r.Data, &res); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", r.ID, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func completed(sess *ExamSession) Outcome {
	return Outcome{
		SessionID: sess.ID,
		Session:   sess,
		Collected: len(sess.Questions),
		Total:     len(sess.Questions),
	}
}
