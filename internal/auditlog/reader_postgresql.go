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

// PostgreSQLReader implements Reader for PostgreSQL databases.
type PostgreSQLReader struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLReader creates a new PostgreSQL audit trail reader.
func NewPostgreSQLReader(pool *pgxpool.Pool) (*PostgreSQLReader, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}
	return &PostgreSQLReader{pool: pool}, nil
}

// Metrics aggregates every event in [from, to].
func (r *PostgreSQLReader) Metrics(ctx context.Context, from, to time.Time) (*core.ComplianceMetrics, error) {
	query := `SELECT id, timestamp, session_id, level, strategy, match_count,
		detected_types, content_hash, success, error_message, hostname, pid, app_version
		FROM audit_events WHERE ($1::timestamptz IS NULL OR timestamp >= $1)
		AND ($2::timestamptz IS NULL OR timestamp < $2)`

	rows, err := r.pool.Query(ctx, query, nullableTime(from), nullableUpperBound(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	metrics := core.NewComplianceMetrics(from, to)
	if err := forEachPostgresEvent(rows, metrics.Add); err != nil {
		return nil, err
	}

	return metrics, nil
}

// EventsBySession returns one session's events in chronological order.
func (r *PostgreSQLReader) EventsBySession(ctx context.Context, sessionID string) ([]core.AuditEvent, error) {
	query := `SELECT id, timestamp, session_id, level, strategy, match_count,
		detected_types, content_hash, success, error_message, hostname, pid, app_version
		FROM audit_events WHERE session_id = $1 ORDER BY timestamp ASC`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events by session: %w", err)
	}
	defer rows.Close()

	events := make([]core.AuditEvent, 0)
	if err := forEachPostgresEvent(rows, func(e *core.AuditEvent) {
		events = append(events, *e)
	}); err != nil {
		return nil, err
	}

	return events, nil
}

func forEachPostgresEvent(rows pgx.Rows, visit func(*core.AuditEvent)) error {
	for rows.Next() {
		var e core.AuditEvent
		var levelStr, strategyStr string
		var typesJSON []byte

		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &levelStr, &strategyStr, &e.MatchCount,
			&typesJSON, &e.ContentHash, &e.Success, &e.ErrorMessage, &e.Hostname, &e.PID, &e.AppVersion); err != nil {
			return fmt.Errorf("failed to scan audit event row: %w", err)
		}

		e.Strategy = core.ProcessingStrategy(strategyStr)

		level, err := core.ParseLevel(levelStr)
		if err != nil {
			slog.Warn("unknown sensitivity level in audit row", "id", e.ID, "level", levelStr)
		}
		e.Level = level

		if len(typesJSON) > 0 {
			if err := json.Unmarshal(typesJSON, &e.DetectedTypes); err != nil {
				slog.Warn("failed to unmarshal detected types", "id", e.ID, "error", err)
			}
		}

		visit(&e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating audit event rows: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullableUpperBound(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.AddDate(0, 0, 1).UTC()
}
