// Package store persists finished deliberations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/council-mode/council/internal/core"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deliberations (
	id              TEXT PRIMARY KEY,
	query           TEXT NOT NULL,
	agreement_level TEXT NOT NULL,
	trigger_type    TEXT NOT NULL,
	payload         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deliberations_created_at
	ON deliberations(created_at DESC);
`

// SQLiteStore implements core.DeliberationStore with SQLite storage. The
// full deliberation is stored as a JSON document alongside the columns
// needed for listing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the deliberation database at path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening deliberation database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating deliberation schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save persists one finished deliberation.
func (s *SQLiteStore) Save(ctx context.Context, d *core.CouncilDeliberation) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding deliberation: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deliberations (id, query, agreement_level, trigger_type, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Query, string(d.Agreement.Level), string(d.Trigger), string(payload),
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting deliberation %s: %w", d.ID, err)
	}
	return nil
}

// Get retrieves a deliberation by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.CouncilDeliberation, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM deliberations WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound("deliberation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying deliberation %s: %w", id, err)
	}

	var d core.CouncilDeliberation
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("decoding deliberation %s: %w", id, err)
	}
	return &d, nil
}

// List returns summaries of the most recent deliberations, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]core.DeliberationSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, agreement_level, trigger_type, created_at
		 FROM deliberations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliberations: %w", err)
	}
	defer rows.Close()

	summaries := make([]core.DeliberationSummary, 0, limit)
	for rows.Next() {
		var s core.DeliberationSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Query, &s.AgreementLevel, &s.Trigger, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning deliberation row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			s.CreatedAt = t
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ core.DeliberationStore = (*SQLiteStore)(nil)
