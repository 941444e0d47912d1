package auditlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dlpgate/internal/core"
	"dlpgate/internal/observability"
)

// Logger provides async buffered audit recording with batch writes.
// It collects events in a channel and flushes them to storage either when
// the buffer is full or at regular intervals. Alerting for sensitive content
// happens synchronously in Record so an alert is never lost to a dropped
// buffer slot.
type Logger struct {
	store         LogStore
	config        Config
	alerter       *WebhookAlerter
	buffer        chan *core.AuditEvent
	done          chan struct{}
	wg            sync.WaitGroup
	flushInterval time.Duration
}

// NewLogger creates a new async buffered Logger.
// The logger starts a background goroutine for flushing events.
func NewLogger(store LogStore, cfg Config) *Logger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	l := &Logger{
		store:         store,
		config:        cfg,
		buffer:        make(chan *core.AuditEvent, cfg.BufferSize),
		done:          make(chan struct{}),
		flushInterval: cfg.FlushInterval,
	}

	if cfg.AlertOnSensitive && cfg.AlertWebhookURL != "" {
		l.alerter = NewWebhookAlerter(cfg.AlertWebhookURL)
	}

	l.wg.Add(1)
	go l.flushLoop()

	return l
}

// Record enriches and queues an event for async writing.
// This method is non-blocking. If the buffer is full, the event is dropped
// and a warning is logged; the sensitive alert still fires first.
func (l *Logger) Record(event *core.AuditEvent) {
	if event == nil {
		return
	}

	enrich(event, l.config.AppVersion)

	if l.config.AlertOnSensitive && event.Level >= core.LevelConfidential {
		observability.SensitiveAlerts.Inc()
		slog.Warn("sensitive content screened",
			"event_id", event.ID,
			"session_id", event.SessionID,
			"level", event.Level.String(),
			"strategy", string(event.Strategy),
			"match_count", event.MatchCount,
		)
		if l.alerter != nil {
			l.alerter.Alert(event)
		}
	}

	select {
	case l.buffer <- event:
		// Event queued successfully
	default:
		sessionID := event.SessionID
		if sessionID == "" {
			sessionID = "unknown"
		}
		slog.Warn("audit buffer full, dropping event",
			"session_id", sessionID,
			"event_id", event.ID,
		)
	}
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}

// Close stops the logger, waits for in-flight alerts and flushes remaining
// events. This should be called during graceful shutdown.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	if l.alerter != nil {
		l.alerter.Close()
	}
	return l.store.Close()
}

// flushLoop runs in the background and periodically flushes the buffer.
func (l *Logger) flushLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	batch := make([]*core.AuditEvent, 0, BatchFlushThreshold)

	for {
		select {
		case event := <-l.buffer:
			batch = append(batch, event)
			if len(batch) >= BatchFlushThreshold {
				l.flushBatch(batch)
				batch = make([]*core.AuditEvent, 0, BatchFlushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushBatch(batch)
				batch = make([]*core.AuditEvent, 0, BatchFlushThreshold)
			}

		case <-l.done:
			// Shutdown: drain queued events. The buffer stays open so a
			// Record racing Close sends into a live channel instead of
			// panicking; such an event is dropped with the drain done.
		drain:
			for {
				select {
				case event := <-l.buffer:
					batch = append(batch, event)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := l.store.Flush(ctx); err != nil {
				slog.Error("failed to flush audit store", "error", err)
			}
			cancel()
			return
		}
	}
}

// flushBatch writes a batch of events to the store.
func (l *Logger) flushBatch(batch []*core.AuditEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := l.store.WriteBatch(ctx, batch); err != nil {
		observability.AuditWriteFailures.Inc()
		slog.Error("failed to write audit batch",
			"error", err,
			"count", len(batch),
		)
	}
}

// NoopLogger is a recorder that does nothing (used when auditing is disabled)
type NoopLogger struct{}

// Record does nothing
func (l *NoopLogger) Record(_ *core.AuditEvent) {}

// Config returns an empty config
func (l *NoopLogger) Config() Config {
	return Config{Enabled: false}
}

// Close does nothing
func (l *NoopLogger) Close() error {
	return nil
}

// LoggerInterface defines the interface for recorders (both real and noop)
type LoggerInterface interface {
	Record(event *core.AuditEvent)
	Config() Config
	Close() error
}
