package auditlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dlpgate/internal/core"
)

// seedTrail writes a known trail: two events today, one yesterday.
func seedTrail(t *testing.T) (*FileStore, *FileReader) {
	t.Helper()

	store := newTestFileStore(t)

	// Pin events to midday so the two "today" timestamps can never roll
	// into the previous day's file.
	y, m, d := time.Now().UTC().Date()
	now := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	events := []*core.AuditEvent{
		{
			ID: "ev-public", Timestamp: now.Add(-2 * time.Hour), SessionID: "sess-a",
			Level: core.LevelPublic, Strategy: core.StrategyCloudStandard,
			DetectedTypes: []string{}, Success: true,
		},
		{
			ID: "ev-local", Timestamp: now.Add(-1 * time.Hour), SessionID: "sess-b",
			Level: core.LevelConfidential, Strategy: core.StrategyLocalOnly,
			MatchCount: 1, DetectedTypes: []string{"dni"}, Success: true,
		},
		{
			ID: "ev-rejected", Timestamp: yesterday, SessionID: "sess-a",
			Level: core.LevelTopSecret, Strategy: core.StrategyRejected,
			MatchCount: 2, DetectedTypes: []string{"dni", "iban"}, Success: false,
		},
	}
	if err := store.WriteBatch(context.Background(), events); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	reader, err := NewFileReader(store.Root())
	if err != nil {
		t.Fatalf("NewFileReader returned error: %v", err)
	}
	return store, reader
}

func TestNewFileReaderValidation(t *testing.T) {
	if _, err := NewFileReader(""); err == nil {
		t.Error("NewFileReader(empty) = nil error, want error")
	}
	if _, err := NewFileReader(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("NewFileReader(missing dir) = nil error, want error")
	}
}

func TestFileReaderMetrics(t *testing.T) {
	_, reader := seedTrail(t)

	metrics, err := reader.Metrics(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}

	if metrics.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3", metrics.TotalEvents)
	}
	if metrics.SensitiveEvents != 2 {
		t.Errorf("SensitiveEvents = %d, want 2", metrics.SensitiveEvents)
	}
	if metrics.RejectedEvents != 1 {
		t.Errorf("RejectedEvents = %d, want 1", metrics.RejectedEvents)
	}
	if metrics.ByLevel[core.LevelPublic] != 1 || metrics.ByLevel[core.LevelTopSecret] != 1 {
		t.Errorf("ByLevel = %v", metrics.ByLevel)
	}
	if metrics.ByStrategy[core.StrategyLocalOnly] != 1 {
		t.Errorf("ByStrategy = %v", metrics.ByStrategy)
	}
	if metrics.DetectedTypeFrequency["dni"] != 2 {
		t.Errorf("DetectedTypeFrequency = %v", metrics.DetectedTypeFrequency)
	}
}

func TestFileReaderMetricsRange(t *testing.T) {
	_, reader := seedTrail(t)

	today := time.Now().UTC().Truncate(24 * time.Hour)

	metrics, err := reader.Metrics(context.Background(), today, today)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 2 {
		t.Errorf("TotalEvents in today's range = %d, want 2", metrics.TotalEvents)
	}

	// A range with no trail days yields an empty aggregate, not an error.
	past := today.AddDate(0, 0, -30)
	metrics, err = reader.Metrics(context.Background(), past, past)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 0 {
		t.Errorf("TotalEvents in empty range = %d, want 0", metrics.TotalEvents)
	}
}

// The bounds are day precision on every backend: a from with an intra-day
// time must not exclude its own day's file or the events before it.
func TestFileReaderMetricsIntraDayFrom(t *testing.T) {
	store := newTestFileStore(t)

	y, m, d := time.Now().UTC().Date()
	evening := time.Date(y, m, d, 18, 0, 0, 0, time.UTC)

	if err := store.WriteBatch(context.Background(), []*core.AuditEvent{
		testEvent("ev-evening", "sess-a", evening),
	}); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	reader, err := NewFileReader(store.Root())
	if err != nil {
		t.Fatalf("NewFileReader returned error: %v", err)
	}

	from := time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	metrics, err := reader.Metrics(context.Background(), from, from)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 1 {
		t.Errorf("TotalEvents = %d, want 1", metrics.TotalEvents)
	}
}

func TestFileReaderEventsBySession(t *testing.T) {
	_, reader := seedTrail(t)

	events, err := reader.EventsBySession(context.Background(), "sess-a")
	if err != nil {
		t.Fatalf("EventsBySession returned error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("EventsBySession returned %d events, want 2", len(events))
	}
	// Chronological order: yesterday's rejected event first.
	if events[0].ID != "ev-rejected" || events[1].ID != "ev-public" {
		t.Errorf("event order = [%s, %s], want [ev-rejected, ev-public]", events[0].ID, events[1].ID)
	}

	events, err = reader.EventsBySession(context.Background(), "sess-missing")
	if err != nil {
		t.Fatalf("EventsBySession returned error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("EventsBySession for unknown session returned %d events, want 0", len(events))
	}
}

// The master log mirrors every daily line; scanning it too would double every
// aggregate.
func TestFileReaderSkipsMasterLog(t *testing.T) {
	_, reader := seedTrail(t)

	metrics, err := reader.Metrics(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3 (master log must not be scanned)", metrics.TotalEvents)
	}
}

func TestFileReaderReadsCompressedArchives(t *testing.T) {
	store, reader := seedTrail(t)

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	path := filepath.Join(store.Root(), yesterday.Format(DailyFilePattern))
	if err := store.compressDaily(path); err != nil {
		t.Fatalf("compressDaily returned error: %v", err)
	}

	metrics, err := reader.Metrics(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 3 {
		t.Errorf("TotalEvents with archived day = %d, want 3", metrics.TotalEvents)
	}
	if metrics.RejectedEvents != 1 {
		t.Errorf("RejectedEvents with archived day = %d, want 1", metrics.RejectedEvents)
	}
}

func TestFileReaderSkipsMalformedLines(t *testing.T) {
	store, reader := seedTrail(t)

	today := time.Now().UTC().Format(DailyFilePattern)
	path := filepath.Join(store.Root(), today)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open daily file: %v", err)
	}
	if _, err := f.WriteString("{not json}\n"); err != nil {
		t.Fatalf("failed to append garbage: %v", err)
	}
	f.Close()

	metrics, err := reader.Metrics(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3 (malformed line skipped)", metrics.TotalEvents)
	}
}

func TestFileReaderIncludesEmergencyLog(t *testing.T) {
	store, reader := seedTrail(t)

	store.writeEmergency([]byte(`{"id":"ev-emergency","timestamp":"` +
		time.Now().UTC().Format(time.RFC3339Nano) +
		`","session_id":"sess-e","level":"top_secret","strategy":"rejected","match_count":1,"detected_types":["dni"],"content_hash":"x","success":false}` + "\n"))

	metrics, err := reader.Metrics(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 4 {
		t.Errorf("TotalEvents = %d, want 4 (emergency log included)", metrics.TotalEvents)
	}
}

func TestInRange(t *testing.T) {
	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad test date %s: %v", s, err)
		}
		return ts
	}

	tests := []struct {
		name     string
		ts       time.Time
		from, to time.Time
		want     bool
	}{
		{name: "open range", ts: day("2024-03-15"), want: true},
		{name: "inside", ts: day("2024-03-15"), from: day("2024-03-01"), to: day("2024-03-31"), want: true},
		{name: "on the from bound", ts: day("2024-03-01"), from: day("2024-03-01"), to: day("2024-03-31"), want: true},
		{name: "late on the to day", ts: day("2024-03-31").Add(23 * time.Hour), from: day("2024-03-01"), to: day("2024-03-31"), want: true},
		{name: "before from", ts: day("2024-02-28"), from: day("2024-03-01"), want: false},
		{name: "after to day", ts: day("2024-04-01"), to: day("2024-03-31"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inRange(tt.ts, tt.from, tt.to); got != tt.want {
				t.Errorf("inRange(%v, %v, %v) = %v, want %v", tt.ts, tt.from, tt.to, got, tt.want)
			}
		})
	}
}
