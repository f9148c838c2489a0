// Package store persists scoring reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/smetana-core/internal/scoring"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

var (
	// ErrNotFound is returned when no report exists for a run ID
	ErrNotFound = errors.New("report not found")
	// ErrExists is returned when a run ID is saved twice
	ErrExists = errors.New("report already exists")
)

const schema = `CREATE TABLE IF NOT EXISTS reports (
	run_id     TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	payload    BLOB NOT NULL
)`

// Record is a stored report
type Record struct {
	RunID     string
	CreatedAt time.Time
	Report    *scoring.Report
}

// Store keeps one row per run with the report encoded as JSON.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "smetana.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create reports table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores report under runID.
func (s *Store) Save(ctx context.Context, runID string, report *scoring.Report) (retErr error) {
	if runID == "" {
		return errors.New("run id is required")
	}
	if report == nil {
		return errors.New("report is required")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", runID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM reports WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return fmt.Errorf("lookup %s: %w", runID, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrExists, runID)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reports (run_id, created_at, payload) VALUES (?, ?, ?)`,
		runID, s.now().UTC().UnixMilli(), payload); err != nil {
		return fmt.Errorf("insert %s: %w", runID, err)
	}
	return tx.Commit()
}

// Get loads the report stored under runID.
func (s *Store) Get(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, created_at, payload FROM reports WHERE run_id = ?`, runID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return rec, err
}

// List returns up to limit records, newest first. A non-positive limit
// defaults to 50.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, payload FROM reports ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec     Record
		created int64
		payload []byte
	)
	if err := row.Scan(&rec.RunID, &created, &payload); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.Report = &scoring.Report{}
	if err := json.Unmarshal(payload, rec.Report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", rec.RunID, err)
	}
	return &rec, nil
}
