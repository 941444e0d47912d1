package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"dlpgate/internal/core"
)

func newTestSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open SQLite database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStoreWriteBatchRoundTrip(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	events := []*core.AuditEvent{
		testEvent("ev-1", "sess-a", now.Add(-2*time.Hour)),
		testEvent("ev-2", "sess-a", now.Add(-1*time.Hour)),
		testEvent("ev-3", "sess-b", now),
	}
	events[2].Level = core.LevelPublic
	events[2].Strategy = core.StrategyCloudStandard
	events[2].MatchCount = 0
	events[2].DetectedTypes = nil

	if err := store.WriteBatch(context.Background(), events); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	reader, err := NewSQLiteReader(db)
	if err != nil {
		t.Fatalf("NewSQLiteReader returned error: %v", err)
	}

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
	if metrics.ByLevel[core.LevelConfidential] != 2 {
		t.Errorf("ByLevel[confidential] = %d, want 2", metrics.ByLevel[core.LevelConfidential])
	}
	if metrics.DetectedTypeFrequency["dni"] != 2 {
		t.Errorf("DetectedTypeFrequency[dni] = %d, want 2", metrics.DetectedTypeFrequency["dni"])
	}

	got, err := reader.EventsBySession(context.Background(), "sess-a")
	if err != nil {
		t.Fatalf("EventsBySession returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("EventsBySession returned %d events, want 2", len(got))
	}
	if got[0].ID != "ev-1" || got[1].ID != "ev-2" {
		t.Errorf("events out of chronological order: %s, %s", got[0].ID, got[1].ID)
	}

	first := got[0]
	if !first.Timestamp.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("Timestamp = %v, want %v", first.Timestamp, now.Add(-2*time.Hour))
	}
	if first.Level != core.LevelConfidential {
		t.Errorf("Level = %s, want confidential", first.Level)
	}
	if first.Strategy != core.StrategyLocalOnly {
		t.Errorf("Strategy = %s, want local_only", first.Strategy)
	}
	if len(first.DetectedTypes) != 1 || first.DetectedTypes[0] != "dni" {
		t.Errorf("DetectedTypes = %v, want [dni]", first.DetectedTypes)
	}
	if first.ContentHash != ContentHash("ev-1") {
		t.Errorf("ContentHash = %q", first.ContentHash)
	}
	if !first.Success {
		t.Error("Success = false, want true")
	}
}

func TestSQLiteStoreWriteBatchEmpty(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.WriteBatch(context.Background(), nil); err != nil {
		t.Errorf("WriteBatch(nil) returned error: %v", err)
	}
}

func TestSQLiteStoreIgnoresDuplicateIDs(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Now().UTC()
	batch := []*core.AuditEvent{testEvent("ev-dup", "sess-a", now)}

	if err := store.WriteBatch(context.Background(), batch); err != nil {
		t.Fatalf("first WriteBatch returned error: %v", err)
	}
	if err := store.WriteBatch(context.Background(), batch); err != nil {
		t.Fatalf("second WriteBatch returned error: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

// A batch above the per-chunk event limit must be split across inserts.
func TestSQLiteStoreWriteBatchChunking(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	total := maxEventsPerChunk + 5
	now := time.Now().UTC()
	events := make([]*core.AuditEvent, 0, total)
	for i := 0; i < total; i++ {
		events = append(events, testEvent(fmt.Sprintf("ev-%03d", i), "sess-bulk", now))
	}

	if err := store.WriteBatch(context.Background(), events); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != total {
		t.Errorf("row count = %d, want %d", count, total)
	}
}

func TestSQLiteReaderMetricsRange(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	inRange := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	outside := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	events := []*core.AuditEvent{
		testEvent("ev-in", "sess-a", inRange),
		testEvent("ev-out", "sess-a", outside),
	}
	if err := store.WriteBatch(context.Background(), events); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	reader, err := NewSQLiteReader(db)
	if err != nil {
		t.Fatalf("NewSQLiteReader returned error: %v", err)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	metrics, err := reader.Metrics(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if metrics.TotalEvents != 1 {
		t.Errorf("TotalEvents = %d, want 1", metrics.TotalEvents)
	}

	// The range bounds are day-inclusive.
	sameDay, err := reader.Metrics(context.Background(), inRange, inRange)
	if err != nil {
		t.Fatalf("Metrics returned error: %v", err)
	}
	if sameDay.TotalEvents != 1 {
		t.Errorf("same-day TotalEvents = %d, want 1", sameDay.TotalEvents)
	}
}

func TestSQLiteStoreCleanup(t *testing.T) {
	db := newTestSQLiteDB(t)

	store, err := NewSQLiteStore(db, 30)
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Now().UTC()
	events := []*core.AuditEvent{
		testEvent("ev-fresh", "sess-a", now),
		testEvent("ev-expired", "sess-a", now.AddDate(0, 0, -40)),
	}
	if err := store.WriteBatch(context.Background(), events); err != nil {
		t.Fatalf("WriteBatch returned error: %v", err)
	}

	store.cleanup()

	rows, err := db.Query("SELECT id FROM audit_events")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}

	if len(ids) != 1 || ids[0] != "ev-fresh" {
		t.Errorf("surviving ids = %v, want [ev-fresh]", ids)
	}
}

func TestNewSQLiteStoreValidation(t *testing.T) {
	if _, err := NewSQLiteStore(nil, 0); err == nil {
		t.Error("NewSQLiteStore(nil) = nil error, want error")
	}
	if _, err := NewSQLiteReader(nil); err == nil {
		t.Error("NewSQLiteReader(nil) = nil error, want error")
	}
}

var (
	_ LogStore = (*SQLiteStore)(nil)
	_ Reader   = (*SQLiteReader)(nil)
)
