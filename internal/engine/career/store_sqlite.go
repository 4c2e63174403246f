package career

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is $HOME/.go_career/career.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_career", "career.db")
}

// OpenSQLiteStore opens (or creates) the SQLite database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS history (
		id         TEXT PRIMARY KEY,
		file_name  TEXT NOT NULL,
		created_at TEXT NOT NULL,
		score      REAL NOT NULL,
		results    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS history_created_idx ON history(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS saved_jobs (
		job_id   TEXT PRIMARY KEY,
		saved_at TEXT NOT NULL
	)`,
}

func initSQLiteSchema(db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) AddHistory(ctx context.Context, e HistoryEntry) error {
	results, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("history_add: marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO history (id, file_name, created_at, score, results) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.FileName, e.Date, e.Score, string(results),
	)
	if err != nil {
		return fmt.Errorf("history_add: insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, created_at, score, results FROM history
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history_list: query: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("history_list: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetHistory(ctx context.Context, id string) (*HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, created_at, score, results FROM history WHERE id = ?`, id)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history_get: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("history_delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("history_clear: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ToggleSavedJob(ctx context.Context, jobID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("job_save: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM saved_jobs WHERE job_id = ?`, jobID)
	if err != nil {
		return false, fmt.Errorf("job_save: delete: %w", err)
	}
	saved := false
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO saved_jobs (job_id, saved_at) VALUES (?, ?)`,
			jobID, time.Now().UTC().Format(sortableTime)); err != nil {
			return false, fmt.Errorf("job_save: insert: %w", err)
		}
		saved = true
	}
	return saved, tx.Commit()
}

func (s *SQLiteStore) ListSavedJobs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id FROM saved_jobs ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("job_saved_list: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(r rowScanner) (*HistoryEntry, error) {
	var (
		e       HistoryEntry
		results string
	)
	if err := r.Scan(&e.ID, &e.FileName, &e.Date, &e.Score, &results); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(results), &e.Results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &e, nil
}
