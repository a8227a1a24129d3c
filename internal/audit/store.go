// Package audit records every grant the signer hands out. A presigned URL
// or upload policy is a live credential; the trail answers "who got access
// to what, and until when" after the fact.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Event types
const (
	EventPresignIssued    = "presign_issued"
	EventPostPolicyIssued = "post_policy_issued"
	EventObjectDeleted    = "object_deleted"
)

// Event is one issued grant or store mutation.
type Event struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	ObjectKey string    `json:"object_key"`
	TraceID   string    `json:"trace_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Store persists events in SQLite.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewStore opens (or creates) the audit database at path.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	logger.WithField("path", path).Info("Audit store initialized")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grant_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		object_key TEXT NOT NULL,
		trace_id TEXT,
		expires_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_grant_events_timestamp ON grant_events(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_grant_events_type ON grant_events(event_type);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Record appends one event. Audit failures are logged, never fatal: a
// signing operation must not fail because its paper trail did.
func (s *Store) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var expires int64
	if !event.ExpiresAt.IsZero() {
		expires = event.ExpiresAt.Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO grant_events (timestamp, event_type, object_key, trace_id, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.Timestamp.Unix(), event.EventType, event.ObjectKey, event.TraceID, expires)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", event.EventType).Error("Failed to record audit event")
	}
}

// Recent returns the newest events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, event_type, object_key, trace_id, expires_at
		 FROM grant_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts, expires int64
		if err := rows.Scan(&e.ID, &ts, &e.EventType, &e.ObjectKey, &e.TraceID, &expires); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		if expires > 0 {
			e.ExpiresAt = time.Unix(expires, 0)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
