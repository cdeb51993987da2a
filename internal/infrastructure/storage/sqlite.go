package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/altaire/deepbook_trader/internal/domain"
)

// SQLiteStore is the append-only cycle journal. The scheduler's correctness
// never depends on it; it exists so the operator can audit cycle outcomes
// with the sqlite3 CLI.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS cycle_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		outcome TEXT NOT NULL,
		digest TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		error_kind TEXT NOT NULL DEFAULT ''
	);`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to init cycle_results schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveCycleResult(ctx context.Context, result *domain.CycleResult) error {
	query := `INSERT INTO cycle_results (started_at, finished_at, outcome, digest, status, reason, error_kind)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		result.StartedAt, result.FinishedAt, string(result.Outcome),
		result.Digest, result.Status, result.Reason, string(result.ErrorKind))
	return err
}

func (s *SQLiteStore) ListCycleResults(ctx context.Context, limit int) ([]*domain.CycleResult, error) {
	query := `SELECT started_at, finished_at, outcome, digest, status, reason, error_kind
			  FROM cycle_results ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.CycleResult
	for rows.Next() {
		var r domain.CycleResult
		var outcome, errorKind string
		if err := rows.Scan(&r.StartedAt, &r.FinishedAt, &outcome, &r.Digest, &r.Status, &r.Reason, &errorKind); err != nil {
			return nil, err
		}
		r.Outcome = domain.CycleOutcome(outcome)
		r.ErrorKind = domain.ErrorKind(errorKind)
		results = append(results, &r)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
