package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dlpgate/internal/core"
)

// SQLiteReader implements Reader for SQLite databases.
type SQLiteReader struct {
	db *sql.DB
}

// NewSQLiteReader creates a new SQLite audit trail reader.
func NewSQLiteReader(db *sql.DB) (*SQLiteReader, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	return &SQLiteReader{db: db}, nil
}

// Metrics aggregates every event in [from, to].
func (r *SQLiteReader) Metrics(ctx context.Context, from, to time.Time) (*core.ComplianceMetrics, error) {
	conditions, args := sqliteDateRangeConditions(from, to)
	where := buildWhereClause(conditions)

	query := `SELECT id, timestamp, session_id, level, strategy, match_count,
		detected_types, content_hash, success, error_message, hostname, pid, app_version
		FROM audit_events` + where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	metrics := core.NewComplianceMetrics(from, to)
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, err
		}
		metrics.Add(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit event rows: %w", err)
	}

	return metrics, nil
}

// EventsBySession returns one session's events in chronological order.
func (r *SQLiteReader) EventsBySession(ctx context.Context, sessionID string) ([]core.AuditEvent, error) {
	query := `SELECT id, timestamp, session_id, level, strategy, match_count,
		detected_types, content_hash, success, error_message, hostname, pid, app_version
		FROM audit_events WHERE session_id = ? ORDER BY timestamp ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events by session: %w", err)
	}
	defer rows.Close()

	events := make([]core.AuditEvent, 0)
	for rows.Next() {
		e, err := scanSQLiteEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit event rows: %w", err)
	}

	return events, nil
}

func sqliteDateRangeConditions(from, to time.Time) (conditions []string, args []interface{}) {
	if !from.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, from.UTC().Format("2006-01-02"))
	}
	if !to.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, to.AddDate(0, 0, 1).UTC().Format("2006-01-02"))
	}
	return conditions, args
}

func parseSQLTimestamp(ts string, eventID string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999999-07:00", ts); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", ts); err == nil {
		return t
	}

	slog.Warn("failed to parse audit timestamp", "id", eventID, "raw_timestamp", ts)
	return time.Time{}
}

func scanSQLiteEvent(rows *sql.Rows) (*core.AuditEvent, error) {
	var e core.AuditEvent
	var ts string
	var levelStr, strategyStr string
	var successInt int
	var typesJSON *string

	if err := rows.Scan(&e.ID, &ts, &e.SessionID, &levelStr, &strategyStr, &e.MatchCount,
		&typesJSON, &e.ContentHash, &successInt, &e.ErrorMessage, &e.Hostname, &e.PID, &e.AppVersion); err != nil {
		return nil, fmt.Errorf("failed to scan audit event row: %w", err)
	}

	e.Timestamp = parseSQLTimestamp(ts, e.ID)
	e.Strategy = core.ProcessingStrategy(strategyStr)
	e.Success = successInt == 1

	level, err := core.ParseLevel(levelStr)
	if err != nil {
		slog.Warn("unknown sensitivity level in audit row", "id", e.ID, "level", levelStr)
	}
	e.Level = level

	if typesJSON != nil && *typesJSON != "" {
		if err := json.Unmarshal([]byte(*typesJSON), &e.DetectedTypes); err != nil {
			slog.Warn("failed to unmarshal detected types", "id", e.ID, "error", err)
		}
	}

	return &e, nil
}
