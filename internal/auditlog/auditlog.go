// Package auditlog provides the append-only compliance trail for the
// screening pipeline. Every routing decision is recorded as an AuditEvent in
// a configurable backend; the file backend additionally maintains daily,
// master and emergency logs.
package auditlog

import (
	"context"
	"time"

	"dlpgate/internal/core"
)

// LogStore defines the interface for audit trail storage backends.
// Implementations must be safe for concurrent use.
type LogStore interface {
	// WriteBatch appends multiple events to storage.
	// This is called by the Logger when flushing buffered events.
	WriteBatch(ctx context.Context, events []*core.AuditEvent) error

	// Flush forces any pending writes to complete.
	// Called during graceful shutdown.
	Flush(ctx context.Context) error

	// Close releases resources and flushes pending writes.
	Close() error
}

// Config holds audit trail configuration
type Config struct {
	// Enabled controls whether audit recording is active
	Enabled bool

	// Root is the directory for the file backend's log files
	Root string

	// BufferSize is the number of events to buffer before flushing
	BufferSize int

	// FlushInterval is how often to flush buffered events
	FlushInterval time.Duration

	// WriteTimeout bounds a single primary write before the event is
	// diverted to the emergency log (file backend only)
	WriteTimeout time.Duration

	// RetentionDays is how long to keep events (0 = forever)
	RetentionDays int

	// AlertOnSensitive raises a synchronous alert for events at
	// confidential level or above
	AlertOnSensitive bool

	// AlertWebhookURL optionally receives a JSON summary of every
	// sensitive event. Empty disables webhook delivery; the log alert
	// still fires.
	AlertWebhookURL string

	// AppVersion is stamped onto every recorded event
	AppVersion string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Root:             "data/audit",
		BufferSize:       1000,
		FlushInterval:    5 * time.Second,
		WriteTimeout:     2 * time.Second,
		RetentionDays:    730,
		AlertOnSensitive: true,
		AppVersion:       "dev",
	}
}
