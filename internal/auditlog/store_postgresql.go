package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dlpgate/internal/core"
)

// PostgreSQLStore implements LogStore for PostgreSQL databases.
type PostgreSQLStore struct {
	pool          *pgxpool.Pool
	retentionDays int
	stopCleanup   chan struct{}
}

// NewPostgreSQLStore creates a new PostgreSQL audit event store.
// It creates the audit_events table if it doesn't exist and starts
// a background cleanup goroutine if retention is configured.
func NewPostgreSQLStore(pool *pgxpool.Pool, retentionDays int) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			session_id TEXT,
			level TEXT NOT NULL,
			strategy TEXT NOT NULL,
			match_count INTEGER DEFAULT 0,
			detected_types JSONB,
			content_hash TEXT,
			success BOOLEAN DEFAULT TRUE,
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
		"CREATE INDEX IF NOT EXISTS idx_audit_types_gin ON audit_events USING GIN (detected_types)",
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &PostgreSQLStore{
		pool:          pool,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, store.cleanup)
	}

	return store, nil
}

// WriteBatch writes multiple events to PostgreSQL in a single batch.
func (s *PostgreSQLStore) WriteBatch(ctx context.Context, events []*core.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		typesJSON, err := json.Marshal(e.DetectedTypes)
		if err != nil {
			slog.Warn("failed to marshal detected types", "error", err, "id", e.ID)
			typesJSON = []byte("[]")
		}

		batch.Queue(`
			INSERT INTO audit_events (id, timestamp, session_id, level, strategy, match_count,
				detected_types, content_hash, success, error_message, hostname, pid, app_version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, e.Timestamp, e.SessionID, e.Level.String(), string(e.Strategy), e.MatchCount,
			typesJSON, e.ContentHash, e.Success, e.ErrorMessage, e.Hostname, e.PID, e.AppVersion)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert audit events batch: %w", err)
		}
	}

	return nil
}

// Flush is a no-op for PostgreSQL as writes are synchronous.
func (s *PostgreSQLStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine.
// Note: We don't close the pool here as it's managed by the storage layer.
func (s *PostgreSQLStore) Close() error {
	if s.retentionDays > 0 {
		close(s.stopCleanup)
	}
	return nil
}

// cleanup deletes events older than the retention period.
func (s *PostgreSQLStore) cleanup() {
	if s.retentionDays <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	result, err := s.pool.Exec(ctx, "DELETE FROM audit_events WHERE timestamp < $1", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old audit events", "error", err)
		return
	}

	if result.RowsAffected() > 0 {
		slog.Info("cleaned up old audit events", "deleted", result.RowsAffected())
	}
}
