package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dlpgate/internal/core"
	"dlpgate/internal/screening"
)

// MaxBatchItems bounds one submission. Screening is cheap but each item can
// produce an audit event; unbounded batches would let a single request flood
// the trail.
const MaxBatchItems = 100

// processTimeout bounds the background screening pass for one batch.
const processTimeout = 5 * time.Minute

// Screener screens one text. *screening.Screener satisfies this interface.
type Screener interface {
	Screen(ctx context.Context, sessionID, text string) (*screening.Result, error)
}

// Runner accepts batch submissions, screens them in the background and
// persists the outcomes. Submitted texts live only in the goroutine that
// processes them; the store never sees an unredacted text.
type Runner struct {
	store    Store
	screener Screener
	wg       sync.WaitGroup
}

// NewRunner creates a Runner on the given store and screener.
func NewRunner(store Store, screener Screener) *Runner {
	return &Runner{
		store:    store,
		screener: screener,
	}
}

// Submit validates and registers a new batch, then starts screening it in
// the background. The returned batch is in the processing state.
func (r *Runner) Submit(ctx context.Context, sessionID string, texts []string) (*core.ScreeningBatch, error) {
	if len(texts) == 0 {
		return nil, core.NewConfigurationError("batch needs at least one text")
	}
	if len(texts) > MaxBatchItems {
		return nil, core.NewConfigurationError("batch exceeds the item limit")
	}

	b := &core.ScreeningBatch{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Status:     core.BatchStatusProcessing,
		CreatedAt:  time.Now().Unix(),
		TotalItems: len(texts),
		Items:      []core.BatchItemResult{},
	}

	if err := r.store.Create(ctx, b); err != nil {
		return nil, err
	}

	r.wg.Add(1)
	go r.process(*b, texts)

	return b, nil
}

// Get returns one batch by id.
func (r *Runner) Get(ctx context.Context, id string) (*core.ScreeningBatch, error) {
	return r.store.Get(ctx, id)
}

// List returns recent batches, newest first.
func (r *Runner) List(ctx context.Context, limit int, after string) ([]*core.ScreeningBatch, error) {
	return r.store.List(ctx, limit, after)
}

// Close waits for in-flight batches to finish processing, then closes the
// store.
func (r *Runner) Close() error {
	r.wg.Wait()
	return r.store.Close()
}

// process screens every text and persists the finished batch.
func (r *Runner) process(b core.ScreeningBatch, texts []string) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	items := make([]core.BatchItemResult, 0, len(texts))
	completed, rejected := 0, 0

	for i, text := range texts {
		result, err := r.screener.Screen(ctx, b.SessionID, text)
		if err != nil {
			items = append(items, core.BatchItemResult{
				Index:         i,
				DetectedTypes: []string{},
				Error:         err.Error(),
			})
			continue
		}

		completed++
		if !result.Permitted {
			rejected++
		}
		items = append(items, core.BatchItemResult{
			Index:            i,
			EventID:          result.EventID,
			RedactedText:     result.RedactedText,
			Level:            result.Level,
			Strategy:         result.Strategy,
			Permitted:        result.Permitted,
			RejectionMessage: result.RejectionMessage,
			DetectedTypes:    result.DetectedTypes,
			MatchCount:       result.MatchCount,
		})
	}

	b.Status = core.BatchStatusCompleted
	b.CompletedAt = time.Now().Unix()
	b.CompletedItems = completed
	b.RejectedItems = rejected
	b.Items = items

	if err := r.store.Update(ctx, &b); err != nil {
		slog.Error("failed to persist finished batch",
			"batch_id", b.ID,
			"error", err,
		)
	}
}
