package auditlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/tidwall/gjson"

	"dlpgate/internal/core"
)

// FileReader implements Reader over the file backend's NDJSON logs. It scans
// only the daily files whose date falls in the requested range, plus the
// emergency log, so a wide audit root does not mean a full-trail read.
type FileReader struct {
	root string
}

// NewFileReader creates a reader over an audit root directory.
func NewFileReader(root string) (*FileReader, error) {
	if root == "" {
		return nil, fmt.Errorf("audit root is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audit root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("audit root %s is not a directory", root)
	}
	return &FileReader{root: root}, nil
}

// Metrics aggregates every event in [from, to].
func (r *FileReader) Metrics(ctx context.Context, from, to time.Time) (*core.ComplianceMetrics, error) {
	metrics := core.NewComplianceMetrics(from, to)

	err := r.scan(ctx, from, to, func(e *core.AuditEvent) {
		metrics.Add(e)
	})
	if err != nil {
		return nil, err
	}

	return metrics, nil
}

// EventsBySession returns one session's events in chronological order. The
// session filter runs on the raw line before the full decode.
func (r *FileReader) EventsBySession(ctx context.Context, sessionID string) ([]core.AuditEvent, error) {
	var events []core.AuditEvent

	err := r.scanFiltered(ctx, time.Time{}, time.Time{}, func(line []byte) bool {
		return gjson.GetBytes(line, "session_id").Str == sessionID
	}, func(e *core.AuditEvent) {
		events = append(events, *e)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return events, nil
}

// scan visits every event in range.
func (r *FileReader) scan(ctx context.Context, from, to time.Time, visit func(*core.AuditEvent)) error {
	return r.scanFiltered(ctx, from, to, nil, visit)
}

// scanFiltered walks the in-range daily files and the emergency log. Each
// line is pre-filtered on its raw timestamp field (and the optional line
// filter) before paying for a full decode.
func (r *FileReader) scanFiltered(ctx context.Context, from, to time.Time, keep func([]byte) bool, visit func(*core.AuditEvent)) error {
	// Both bounds are day precision. An intra-day from must not exclude
	// its own day's file or events; the SQL readers truncate the same way.
	if !from.IsZero() {
		day := from.UTC()
		from = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}

	paths, err := r.candidateFiles(from, to)
	if err != nil {
		return err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.scanFile(path, from, to, keep, visit); err != nil {
			return err
		}
	}

	return nil
}

// candidateFiles lists the daily files (plain and archived) whose date falls
// in range, plus the emergency log. The master log is skipped: it mirrors
// the daily files and would double-count every event.
func (r *FileReader) candidateFiles(from, to time.Time) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit root: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()

		if name == EmergencyFileName {
			paths = append(paths, filepath.Join(r.root, name))
			continue
		}

		base := strings.TrimSuffix(name, CompressedSuffix)
		day, err := time.Parse(DailyFilePattern, base)
		if err != nil {
			continue
		}
		if !inRange(day, from, to) {
			continue
		}
		paths = append(paths, filepath.Join(r.root, name))
	}

	sort.Strings(paths)
	return paths, nil
}

// scanFile streams one NDJSON file, transparently decompressing archives.
func (r *FileReader) scanFile(path string, from, to time.Time, keep func([]byte) bool, visit func(*core.AuditEvent)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, CompressedSuffix) {
		reader = brotli.NewReader(f)
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// Cheap raw-field checks before the full decode.
		ts := gjson.GetBytes(line, "timestamp")
		if ts.Exists() {
			if t, err := time.Parse(time.RFC3339Nano, ts.Str); err == nil && !inRange(t, from, to) {
				continue
			}
		}
		if keep != nil && !keep(line) {
			continue
		}

		var e core.AuditEvent
		if err := json.Unmarshal(line, &e); err != nil {
			slog.Warn("skipping malformed audit line", "path", path, "error", err)
			continue
		}
		if !inRange(e.Timestamp, from, to) {
			continue
		}

		visit(&e)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
