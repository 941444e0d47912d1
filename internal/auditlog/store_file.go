package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andybalholm/brotli"

	"dlpgate/internal/core"
	"dlpgate/internal/observability"
)

// FileStore implements LogStore on top of append-only NDJSON files. Each
// event lands in the daily file for its timestamp and is mirrored into the
// master log; events whose primary write fails or times out are diverted to
// the emergency log so the trail never silently loses a record.
type FileStore struct {
	root          string
	writeTimeout  time.Duration
	retentionDays int

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewFileStore creates the audit root directory and starts the retention
// cleanup goroutine if retention is configured.
func NewFileStore(root string, writeTimeout time.Duration, retentionDays int) (*FileStore, error) {
	if root == "" {
		root = DefaultConfig().Root
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultConfig().WriteTimeout
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit root %s: %w", root, err)
	}

	store := &FileStore{
		root:          root,
		writeTimeout:  writeTimeout,
		retentionDays: retentionDays,
		locks:         make(map[string]*sync.Mutex),
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, store.cleanup)
	}

	return store, nil
}

// Root returns the audit root directory.
func (s *FileStore) Root() string {
	return s.root
}

// WriteBatch appends the events to their daily files and the master log.
// A failed or timed-out primary write diverts the affected events to the
// emergency log instead of returning an error upward: the Logger's batch
// must not be retried wholesale, or the trail would duplicate events.
func (s *FileStore) WriteBatch(_ context.Context, events []*core.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}

	byDay := make(map[string][]byte)
	var master bytes.Buffer

	for _, e := range events {
		line, err := json.Marshal(e)
		if err != nil {
			slog.Error("failed to marshal audit event", "event_id", e.ID, "error", err)
			continue
		}
		line = append(line, '\n')

		day := e.Timestamp.UTC().Format(DailyFilePattern)
		byDay[day] = append(byDay[day], line...)
		master.Write(line)
	}

	for day, data := range byDay {
		path := filepath.Join(s.root, day)
		if err := s.appendWithTimeout(path, data); err != nil {
			observability.AuditWriteFailures.Inc()
			slog.Error("primary audit write failed, diverting to emergency log",
				"path", path, "error", err)
			s.writeEmergency(data)
		}
	}

	// The master log mirrors the daily files and is never read back by the
	// compliance reader; diverting it to the emergency log would count every
	// event twice. Events are durable once their daily append succeeded.
	masterPath := filepath.Join(s.root, MasterFileName)
	if err := s.appendWithTimeout(masterPath, master.Bytes()); err != nil {
		observability.AuditWriteFailures.Inc()
		slog.Error("master audit write failed, daily files remain authoritative",
			"path", masterPath, "error", err)
	}

	return nil
}

// Flush is a no-op: every append is synced to the OS on close.
func (s *FileStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *FileStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

// pathLock returns the mutex serializing appends to one file.
func (s *FileStore) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[path] = lock
	}
	return lock
}

// appendWithTimeout bounds one append so a hung filesystem (network share,
// full disk stall) cannot wedge the flush loop. The abandoned goroutine
// still finishes its write once the filesystem recovers; the per-path lock
// keeps it ordered against later appends.
func (s *FileStore) appendWithTimeout(path string, data []byte) error {
	done := make(chan error, 1)
	go func() {
		done <- s.append(path, data)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.writeTimeout):
		return fmt.Errorf("append to %s timed out after %s", path, s.writeTimeout)
	}
}

// append serializes writers per file and appends the data in one call.
func (s *FileStore) append(path string, data []byte) error {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

// writeEmergency is the last-resort append. It runs without a timeout; if
// even this fails the events are surfaced in the process log as the final
// fallback.
func (s *FileStore) writeEmergency(data []byte) {
	path := filepath.Join(s.root, EmergencyFileName)
	if err := s.append(path, data); err != nil {
		slog.Error("emergency audit write failed, events recorded in process log only",
			"error", err, "events", string(data))
	}
}

// cleanup archives aged daily files and removes those past retention. The
// master and emergency logs are never touched.
func (s *FileStore) cleanup() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		slog.Error("failed to scan audit root for cleanup", "error", err)
		return
	}

	now := time.Now().UTC()
	compressBefore := now.AddDate(0, 0, -CompressAfterDays)
	deleteBefore := now.AddDate(0, 0, -s.retentionDays)

	for _, entry := range entries {
		name := entry.Name()
		base := name
		compressed := false
		if filepath.Ext(name) == CompressedSuffix {
			base = name[:len(name)-len(CompressedSuffix)]
			compressed = true
		}

		day, err := time.Parse(DailyFilePattern, base)
		if err != nil {
			// Not a daily file (master, emergency, strays): leave it.
			continue
		}

		path := filepath.Join(s.root, name)

		if s.retentionDays > 0 && day.Before(deleteBefore) {
			if err := os.Remove(path); err != nil {
				slog.Error("failed to remove expired audit file", "path", path, "error", err)
			} else {
				slog.Info("removed expired audit file", "path", path)
			}
			continue
		}

		if !compressed && day.Before(compressBefore) {
			if err := s.compressDaily(path); err != nil {
				slog.Error("failed to compress audit file", "path", path, "error", err)
			}
		}
	}
}

// compressDaily rewrites one daily file as a brotli archive and removes the
// original. The per-path lock is held so no append races the rewrite.
func (s *FileStore) compressDaily(path string) error {
	lock := s.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish compressing %s: %w", path, err)
	}

	archived := path + CompressedSuffix
	if err := os.WriteFile(archived, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", archived, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s after archiving: %w", path, err)
	}

	slog.Info("archived audit file", "path", archived, "original_bytes", len(data))
	return nil
}
