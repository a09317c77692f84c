package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var (
	sessionColumns = []string{"session_id", "core", "difficulty", "mode", "question_count", "data", "created_at"}
	resultColumns  = []string{"id", "session_id", "percent", "correct_count", "total", "data", "created_at"}
)

// sessionRepo implements SessionRepo.
type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args := sqlite().Insert(tableSessions).
		Columns(sessionColumns...).
		Values(rec.SessionID, rec.Core, rec.Difficulty, rec.Mode, rec.QuestionCount, string(rec.Data), rec.CreatedAt).
		OnConflict(entsql.ConflictColumns("session_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session %s: %w", rec.SessionID, err)
	}
	return nil
}

func (r *sessionRepo) GetSession(ctx context.Context, sessionID string) (*SessionRecord, error) {
	query, args := sqlite().Select(sessionColumns...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("session_id", sessionID)).
		Query()
	rec, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return rec, nil
}

func (r *sessionRepo) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	sel := sqlite().Select(sessionColumns...).
		From(entsql.Table(tableSessions)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{tableResults, tableSessions} {
		query, args := sqlite().Delete(table).Where(entsql.EQ("session_id", sessionID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (r *sessionRepo) AppendResult(ctx context.Context, rec ResultRecord) (int, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query, args := sqlite().Insert(tableResults).
		Columns(resultColumns[1:]...).
		Values(rec.SessionID, rec.Percent, rec.CorrectCount, rec.Total, string(rec.Data), rec.CreatedAt).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("save result for %s: %w", rec.SessionID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("result id: %w", err)
	}
	return int(id), nil
}

func (r *sessionRepo) Results(ctx context.Context, sessionID string) ([]ResultRecord, error) {
	query, args := sqlite().Select(resultColumns...).
		From(entsql.Table(tableResults)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var data string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Percent, &rec.CorrectCount, &rec.Total, &data, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.Data = []byte(data)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSession(s rowScanner) (*SessionRecord, error) {
	var rec SessionRecord
	var data string
	if err := s.Scan(&rec.SessionID, &rec.Core, &rec.Difficulty, &rec.Mode, &rec.QuestionCount, &data, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Data = []byte(data)
	return &rec, nil
}
