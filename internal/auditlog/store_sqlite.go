package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dlpgate/internal/core"
)

// SQLite has a default limit of 999 bindable parameters per query
// (SQLITE_MAX_VARIABLE_NUMBER). With 13 columns per event we chunk larger
// batches to stay under that limit.
const (
	maxSQLiteParams   = 999
	columnsPerEvent   = 13
	maxEventsPerChunk = maxSQLiteParams / columnsPerEvent
)

// SQLiteStore implements LogStore for SQLite databases.
type SQLiteStore struct {
	db            *sql.DB
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewSQLiteStore creates a new SQLite audit event store.
// It creates the audit_events table if it doesn't exist and starts
// a background cleanup goroutine if retention is configured.
func NewSQLiteStore(db *sql.DB, retentionDays int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			session_id TEXT,
			level TEXT NOT NULL,
			strategy TEXT NOT NULL,
			match_count INTEGER DEFAULT 0,
			detected_types JSON,
			content_hash TEXT,
			success INTEGER DEFAULT 1,
			error_message TEXT,
			hostname TEXT,
			pid INTEGER DEFAULT 0,
			app_version TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit_events table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_events(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_level ON audit_events(level)",
		"CREATE INDEX IF NOT EXISTS idx_audit_strategy ON audit_events(strategy)",
		"CREATE INDEX IF NOT EXISTS idx_audit_content_hash ON audit_events(content_hash)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &SQLiteStore{
		db:            db,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, store.cleanup)
	}

	return store, nil
}

// WriteBatch writes multiple events to SQLite using batch insert.
// Events are chunked to stay within SQLite's parameter limit.
func (s *SQLiteStore) WriteBatch(ctx context.Context, events []*core.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	for i := 0; i < len(events); i += maxEventsPerChunk {
		end := i + maxEventsPerChunk
		if end > len(events) {
			end = len(events)
		}
		chunk := events[i:end]

		placeholders := make([]string, len(chunk))
		values := make([]interface{}, 0, len(chunk)*columnsPerEvent)

		for j, e := range chunk {
			placeholders[j] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

			typesJSON, err := json.Marshal(e.DetectedTypes)
			if err != nil {
				slog.Warn("failed to marshal detected types", "error", err, "id", e.ID)
				typesJSON = []byte("[]")
			}

			successInt := 0
			if e.Success {
				successInt = 1
			}

			values = append(values,
				e.ID,
				e.Timestamp.UTC().Format(time.RFC3339Nano),
				e.SessionID,
				e.Level.String(),
				string(e.Strategy),
				e.MatchCount,
				string(typesJSON),
				e.ContentHash,
				successInt,
				e.ErrorMessage,
				e.Hostname,
				e.PID,
				e.AppVersion,
			)
		}

		query := `INSERT OR IGNORE INTO audit_events (id, timestamp, session_id, level, strategy,
			match_count, detected_types, content_hash, success, error_message, hostname, pid, app_version) VALUES ` +
			strings.Join(placeholders, ",")

		_, err := s.db.ExecContext(ctx, query, values...)
		if err != nil {
			return fmt.Errorf("failed to insert audit events batch %d: %w", i/maxEventsPerChunk, err)
		}
	}

	return nil
}

// Flush is a no-op for SQLite as writes are synchronous.
func (s *SQLiteStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine.
// Note: We don't close the DB here as it's managed by the storage layer.
// Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

// cleanup deletes events older than the retention period.
func (s *SQLiteStore) cleanup() {
	if s.retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays).UTC().Format(time.RFC3339)

	result, err := s.db.Exec("DELETE FROM audit_events WHERE timestamp < ?", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old audit events", "error", err)
		return
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
		slog.Info("cleaned up old audit events", "deleted", rowsAffected)
	}
}
