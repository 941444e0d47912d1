// Package batch provides asynchronous screening of text collections with a
// persisted batch lifecycle. Submitted texts are held in memory only until
// processed; the stores persist redacted results and decision metadata.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dlpgate/internal/core"
)

// ErrNotFound indicates a requested batch was not found.
var ErrNotFound = errors.New("batch not found")

// Store defines persistence operations for screening batches.
type Store interface {
	Create(ctx context.Context, batch *core.ScreeningBatch) error
	Get(ctx context.Context, id string) (*core.ScreeningBatch, error)
	List(ctx context.Context, limit int, after string) ([]*core.ScreeningBatch, error)
	Update(ctx context.Context, batch *core.ScreeningBatch) error
	Close() error
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 101:
		return 101
	default:
		return limit
	}
}

func cloneBatch(src *core.ScreeningBatch) (*core.ScreeningBatch, error) {
	if src == nil {
		return nil, fmt.Errorf("batch is nil")
	}
	b, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	var dst core.ScreeningBatch
	if err := json.Unmarshal(b, &dst); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	return &dst, nil
}

func serializeBatch(batch *core.ScreeningBatch) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("batch is nil")
	}
	b, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	return b, nil
}

func deserializeBatch(raw []byte) (*core.ScreeningBatch, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty batch payload")
	}
	var batch core.ScreeningBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	return &batch, nil
}
