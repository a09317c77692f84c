package store

import (
	"context"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range Tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table.Name, err)
		}
	}
}

func TestStateRepo_SaveLoadReplace(t *testing.T) {
	s := openTestStore(t)
	repo := s.StateRepo()
	ctx := context.Background()

	got, err := repo.Load(ctx, "missing")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing state")
	}

	rec := StateRecord{SessionID: "s1", Core: "core1", NextPlanIndex: 20, PlanLength: 90, Data: []byte(`{"nextPlanIndex":20}`)}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	rec.NextPlanIndex = 40
	rec.LastError = "generation invalid after 2 attempts"
	rec.Data = []byte(`{"nextPlanIndex":40}`)
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err = repo.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.NextPlanIndex != 40 || got.LastError == "" {
		t.Errorf("state not replaced: %+v", got)
	}
	if string(got.Data) != `{"nextPlanIndex":40}` {
		t.Errorf("data = %s", got.Data)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("list len = %d, want 1", len(all))
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete twice: %v", err)
	}
	got, _ = repo.Load(ctx, "s1")
	if got != nil {
		t.Fatal("expected state to be deleted")
	}
}

func TestSessionRepo_SessionsAndResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a", "b", "c"} {
		err := repo.SaveSession(ctx, SessionRecord{
			SessionID:     id,
			Core:          "core2",
			Difficulty:    "medium",
			Mode:          "offline",
			QuestionCount: 90,
			Data:          []byte(`[]`),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	list, err := repo.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].SessionID != "c" {
		t.Fatalf("list = %+v, want newest first limited to 2", list)
	}

	id1, err := repo.AppendResult(ctx, ResultRecord{SessionID: "b", Percent: 55.6, CorrectCount: 50, Total: 90, Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("append result: %v", err)
	}
	id2, err := repo.AppendResult(ctx, ResultRecord{SessionID: "b", Percent: 100, CorrectCount: 90, Total: 90, Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("append result: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("result ids not increasing: %d, %d", id1, id2)
	}

	results, err := repo.Results(ctx, "b")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 2 || results[1].Percent != 100 {
		t.Fatalf("results = %+v", results)
	}

	if err := repo.DeleteSession(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sess, err := repo.GetSession(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess != nil {
		t.Fatal("expected session to be deleted")
	}
	results, _ = repo.Results(ctx, "b")
	if len(results) != 0 {
		t.Fatalf("expected results to be deleted, got %d", len(results))
	}
}

func TestEventRepo_LLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	batch := 3
	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "item-gen", SessionID: "s1", BatchIndex: &batch, InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, RequestBody: "[user]\nbatch 0", ResponseBody: `{"items":[]}`},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "item-gen", InputTokens: 120, OutputTokens: 10, LatencyMs: 300, Success: false, ErrorMessage: "invalid"},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "backend", InputTokens: 50, OutputTokens: 60, LatencyMs: 100, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 2 || list[0].Model != "gpt-4o-mini" {
		t.Fatalf("query = %+v, want newest first", list)
	}

	older, err := repo.QueryLLMEvents(ctx, QueryOpts{Before: list[1].ID})
	if err != nil {
		t.Fatalf("query before: %v", err)
	}
	if len(older) != 1 {
		t.Fatalf("query before len = %d, want 1", len(older))
	}

	e, err := repo.GetLLMEvent(ctx, older[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.ResponseBody != `{"items":[]}` || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.SessionID != "s1" || e.BatchIndex == nil || *e.BatchIndex != 3 {
		t.Errorf("batch tags = %q/%v", e.SessionID, e.BatchIndex)
	}
	if list[0].BatchIndex != nil {
		t.Errorf("untagged event has batch %d", *list[0].BatchIndex)
	}

	tagged, err := repo.QueryLLMEvents(ctx, QueryOpts{SessionID: "s1"})
	if err != nil {
		t.Fatalf("query by session: %v", err)
	}
	if len(tagged) != 1 || tagged[0].ID != e.ID {
		t.Fatalf("query by session = %+v", tagged)
	}
	backend, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "backend"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(backend) != 1 || backend[0].Model != "gpt-4o-mini" {
		t.Fatalf("query by purpose = %+v", backend)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Fatalf("get missing = %v, %v", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %+v", byPurpose)
	}
	gen := byPurpose[1]
	if gen.Purpose != "item-gen" || gen.Calls != 2 || gen.InputTokens != 220 || gen.OutputTokens != 410 || gen.AvgLatencyMs != 600 {
		t.Errorf("item-gen usage = %+v", gen)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "claude-haiku-4-5-20251001" || byModel[0].Calls != 2 {
		t.Errorf("model usage = %+v", byModel)
	}
}
