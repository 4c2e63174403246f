package career

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore keeps history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgresStore creates a pgx pool and runs schema migrations.
func ConnectPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("history postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (s *PostgresStore) AddHistory(ctx context.Context, e HistoryEntry) error {
	results, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("history_add: marshal: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, e.Date)
	if err != nil {
		created = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO resume_history (id, file_name, created_at, score, results) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.FileName, created, e.Score, results,
	)
	if err != nil {
		return fmt.Errorf("history_add: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, file_name, created_at, score, results FROM resume_history
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("history_list: query: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		e, err := scanPgHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("history_list: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetHistory(ctx context.Context, id string) (*HistoryEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, file_name, created_at, score, results FROM resume_history WHERE id::text = $1`, id)
	e, err := scanPgHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history_get: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) DeleteHistory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM resume_history WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("history_delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM resume_history`); err != nil {
		return fmt.Errorf("history_clear: %w", err)
	}
	return nil
}

func (s *PostgresStore) ToggleSavedJob(ctx context.Context, jobID string) (bool, error) {
	saved := false
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM saved_jobs WHERE job_id = $1`, jobID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		saved = true
		_, err = tx.Exec(ctx, `INSERT INTO saved_jobs (job_id) VALUES ($1)`, jobID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("job_save: %w", err)
	}
	return saved, nil
}

func (s *PostgresStore) ListSavedJobs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT job_id FROM saved_jobs ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("job_saved_list: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("job_saved_list: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgHistory(r pgx.Row) (*HistoryEntry, error) {
	var (
		e       HistoryEntry
		created time.Time
		results []byte
	)
	if err := r.Scan(&e.ID, &e.FileName, &created, &e.Score, &results); err != nil {
		return nil, err
	}
	e.Date = created.UTC().Format(sortableTime)
	if err := json.Unmarshal(results, &e.Results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return &e, nil
}
