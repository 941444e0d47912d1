package batch

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dlpgate/internal/core"
	"dlpgate/internal/storage"
)

func newSQLiteBatchStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := storage.NewSQLite(storage.SQLiteConfig{Path: filepath.Join(t.TempDir(), "batches.db")})
	if err != nil {
		t.Fatalf("new sqlite storage: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	store, err := NewSQLiteStore(st.SQLiteDB())
	if err != nil {
		t.Fatalf("new sqlite batch store: %v", err)
	}
	return store
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	store := newSQLiteBatchStore(t)
	ctx := context.Background()

	b := &core.ScreeningBatch{
		ID:         "batch-sql-1",
		SessionID:  "sess-a",
		Status:     core.BatchStatusProcessing,
		CreatedAt:  123,
		TotalItems: 2,
	}

	if err := store.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != b.ID || got.TotalItems != 2 {
		t.Fatalf("got = %+v", got)
	}

	got.Status = core.BatchStatusCompleted
	got.CompletedItems = 2
	got.RejectedItems = 1
	got.Items = []core.BatchItemResult{
		{Index: 0, RedactedText: "hola", Level: core.LevelPublic, Strategy: core.StrategyCloudStandard, Permitted: true, DetectedTypes: []string{}},
		{Index: 1, RedactedText: "*****8Z", Level: core.LevelTopSecret, Strategy: core.StrategyRejected, DetectedTypes: []string{"dni"}, MatchCount: 1},
	}
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	got2, err := store.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got2.Status != core.BatchStatusCompleted || got2.RejectedItems != 1 {
		t.Fatalf("got2 = %+v", got2)
	}
	if len(got2.Items) != 2 || got2.Items[1].Strategy != core.StrategyRejected {
		t.Fatalf("items = %+v", got2.Items)
	}
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store := newSQLiteBatchStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreUpdateMissing(t *testing.T) {
	store := newSQLiteBatchStore(t)
	b := &core.ScreeningBatch{ID: "nope", CreatedAt: 1}
	if err := store.Update(context.Background(), b); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreListPagination(t *testing.T) {
	store := newSQLiteBatchStore(t)
	ctx := context.Background()

	inputs := []*core.ScreeningBatch{
		{ID: "batch-a", CreatedAt: 1, Status: core.BatchStatusCompleted},
		{ID: "batch-b", CreatedAt: 2, Status: core.BatchStatusCompleted},
		{ID: "batch-c", CreatedAt: 2, Status: core.BatchStatusCompleted},
		{ID: "batch-d", CreatedAt: 3, Status: core.BatchStatusCompleted},
	}
	for _, b := range inputs {
		if err := store.Create(ctx, b); err != nil {
			t.Fatalf("create %s: %v", b.ID, err)
		}
	}

	first, err := store.List(ctx, 2, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 2 || first[0].ID != "batch-d" || first[1].ID != "batch-c" {
		t.Fatalf("first page = %v", ids(first))
	}

	second, err := store.List(ctx, 2, first[1].ID)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(second) != 2 || second[0].ID != "batch-b" || second[1].ID != "batch-a" {
		t.Fatalf("second page = %v", ids(second))
	}
}

var _ Store = (*SQLiteStore)(nil)
