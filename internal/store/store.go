// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/shuddho/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is RFC 3339 with a fixed-width fraction, so stored timestamps
// sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Store wraps SQLite access for learning data and analysis runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS blobs (
			name TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			model TEXT NOT NULL,
			chars INTEGER NOT NULL,
			corrections INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			fallback INTEGER NOT NULL,
			failure TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ended_at ON analyses(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadBlob returns the named blob. The boolean is false when no blob is stored.
func (s *Store) LoadBlob(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SaveBlob replaces the named blob.
func (s *Store) SaveBlob(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, formatTime(time.Now()))
	return err
}

// DeleteBlob removes the named blob if present.
func (s *Store) DeleteBlob(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE name = ?`, name)
	return err
}

// InsertAnalysis stores a finished analysis run.
func (s *Store) InsertAnalysis(ctx context.Context, run model.AnalysisRun) (int64, error) {
	fallback := 0
	if run.Fallback {
		fallback = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (run_id, started_at, ended_at, model, chars, corrections, errors, fallback, failure)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		formatTime(run.StartedAt),
		formatTime(run.EndedAt),
		run.Model,
		run.Chars,
		run.Corrections,
		run.Errors,
		fallback,
		run.Failure,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAnalyses returns runs ordered by end time, oldest first.
func (s *Store) ListAnalyses(ctx context.Context, cfg model.ReportConfig) ([]model.AnalysisRun, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, run_id, started_at, ended_at, model, chars, corrections, errors, fallback, failure
		FROM analyses
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.AnalysisRun
	for rows.Next() {
		var run model.AnalysisRun
		var startedAt, endedAt string
		var fallback int
		if err := rows.Scan(&run.ID, &run.RunID, &startedAt, &endedAt, &run.Model, &run.Chars,
			&run.Corrections, &run.Errors, &fallback, &run.Failure); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		run.Fallback = fallback != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}
