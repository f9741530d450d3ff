// Package audit persists a record of every tool invocation to SQLite.
// The store is opt-in and observational only; no workflow state lives here.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tool_invocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at INTEGER NOT NULL,
	tool TEXT NOT NULL,
	invocation_id TEXT NOT NULL,
	success INTEGER NOT NULL,
	error_code TEXT NOT NULL DEFAULT '',
	envelope_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_tool_invocations_tool ON tool_invocations(tool, occurred_at);
CREATE INDEX IF NOT EXISTS idx_tool_invocations_envelope ON tool_invocations(envelope_id);
`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Event is one recorded tool invocation.
type Event struct {
	Time         time.Time
	Tool         string
	InvocationID string
	Success      bool
	ErrorCode    string
	EnvelopeID   string
}

// Store provides SQLite-backed persistence for invocation events.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a store at the provided path, creating the schema when absent.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit db path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record persists one event. A zero Time is stamped with the current time.
func (s *Store) Record(ctx context.Context, event Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tool_invocations (occurred_at, tool, invocation_id, success, error_code, envelope_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		toMillis(event.Time), event.Tool, event.InvocationID, event.Success, event.ErrorCode, event.EnvelopeID)
	if err != nil {
		return fmt.Errorf("insert tool invocation: %w", err)
	}
	return nil
}

// RecentForEnvelope returns the latest events touching an envelope, newest
// first.
func (s *Store) RecentForEnvelope(ctx context.Context, envelopeID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT occurred_at, tool, invocation_id, success, error_code, envelope_id
		 FROM tool_invocations WHERE envelope_id = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		envelopeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tool invocations: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event      Event
			occurredAt int64
		)
		if err := rows.Scan(&occurredAt, &event.Tool, &event.InvocationID,
			&event.Success, &event.ErrorCode, &event.EnvelopeID); err != nil {
			return nil, fmt.Errorf("scan tool invocation: %w", err)
		}
		event.Time = fromMillis(occurredAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tool invocations: %w", err)
	}
	return events, nil
}
