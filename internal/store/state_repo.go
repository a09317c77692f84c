package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var stateColumns = []string{
	"session_id", "core", "next_plan_index", "plan_length", "last_error", "data", "updated_at",
}

// stateRepo implements StateRepo.
type stateRepo struct {
	db *sql.DB
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *stateRepo) Save(ctx context.Context, rec StateRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	query, args := sqlite().Insert(tableStates).
		Columns(stateColumns...).
		Values(rec.SessionID, rec.Core, rec.NextPlanIndex, rec.PlanLength, rec.LastError, string(rec.Data), rec.UpdatedAt).
		OnConflict(entsql.ConflictColumns("session_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save generation state %s: %w", rec.SessionID, err)
	}
	return nil
}

func (r *stateRepo) Load(ctx context.Context, sessionID string) (*StateRecord, error) {
	query, args := sqlite().Select(stateColumns...).
		From(entsql.Table(tableStates)).
		Where(entsql.EQ("session_id", sessionID)).
		Query()
	rec, err := scanState(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load generation state %s: %w", sessionID, err)
	}
	return rec, nil
}

func (r *stateRepo) Delete(ctx context.Context, sessionID string) error {
	query, args := sqlite().Delete(tableStates).
		Where(entsql.EQ("session_id", sessionID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete generation state %s: %w", sessionID, err)
	}
	return nil
}

func (r *stateRepo) List(ctx context.Context) ([]StateRecord, error) {
	query, args := sqlite().Select(stateColumns...).
		From(entsql.Table(tableStates)).
		OrderBy(entsql.Desc("updated_at")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list generation states: %w", err)
	}
	defer rows.Close()

	var out []StateRecord
	for rows.Next() {
		rec, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation state: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanState(s rowScanner) (*StateRecord, error) {
	var rec StateRecord
	var data string
	if err := s.Scan(&rec.SessionID, &rec.Core, &rec.NextPlanIndex, &rec.PlanLength, &rec.LastError, &data, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Data = []byte(data)
	return &rec, nil
}
