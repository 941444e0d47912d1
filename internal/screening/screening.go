// Package screening is the pipeline tying detection, classification, routing
// and audit recording together. One Screen call takes raw text and returns
// the redacted copy plus the routing verdict; the original text never leaves
// the call.
package screening

import (
	"context"
	"log/slog"
	"time"

	"dlpgate/internal/auditlog"
	"dlpgate/internal/cache"
	"dlpgate/internal/core"
	"dlpgate/internal/detector"
	"dlpgate/internal/observability"
	"dlpgate/internal/policy"
	"dlpgate/internal/router"
)

// Result is the outcome of one screening, safe to hand to the caller: it
// carries only redacted text and decision metadata.
type Result struct {
	EventID          string                  `json:"event_id"`
	RedactedText     string                  `json:"redacted_text"`
	Level            core.SensitivityLevel   `json:"level"`
	Strategy         core.ProcessingStrategy `json:"strategy"`
	Permitted        bool                    `json:"permitted"`
	RejectionMessage string                  `json:"rejection_message,omitempty"`
	DetectedTypes    []string                `json:"detected_types"`
	MatchCount       int                     `json:"match_count"`
}

// Screener runs the pipeline under one enterprise policy. The cache is
// optional and holds detection output only; routing is re-evaluated on every
// call so policy changes apply to cached texts too.
type Screener struct {
	policy     policy.EnterprisePolicy
	cache      cache.Cache
	recorder   auditlog.LoggerInterface
	appVersion string
}

// New creates a Screener. A nil cache disables result caching; a nil
// recorder disables audit recording.
func New(p policy.EnterprisePolicy, c cache.Cache, recorder auditlog.LoggerInterface, appVersion string) *Screener {
	if recorder == nil {
		recorder = &auditlog.NoopLogger{}
	}
	return &Screener{
		policy:     p,
		cache:      c,
		recorder:   recorder,
		appVersion: appVersion,
	}
}

// Policy returns the policy the screener routes under.
func (s *Screener) Policy() policy.EnterprisePolicy {
	return s.policy
}

// Screen runs detection, routing and audit recording for one text blob.
// Audit recording is asynchronous; the screening result does not wait on
// trail I/O.
func (s *Screener) Screen(ctx context.Context, sessionID, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	detection := s.detect(ctx, text)
	decision := router.Route(detection.Level, detection.MatchCount, detection.DetectedTypes, s.policy)

	event := auditlog.NewEvent(sessionID, text, detection, decision, s.appVersion)
	s.recorder.Record(event)

	observability.Screenings.WithLabelValues(string(decision.Strategy), detection.Level.String()).Inc()
	if !decision.Permitted {
		observability.Rejections.Inc()
	}
	observability.ScreeningDuration.Observe(time.Since(start).Seconds())

	return &Result{
		EventID:          event.ID,
		RedactedText:     detection.RedactedText,
		Level:            detection.Level,
		Strategy:         decision.Strategy,
		Permitted:        decision.Permitted,
		RejectionMessage: decision.RejectionMessage,
		DetectedTypes:    detection.DetectedTypes,
		MatchCount:       detection.MatchCount,
	}, nil
}

// Params resolves the provider-call configuration for a screening result's
// strategy under the screener's policy.
func (s *Screener) Params(strategy core.ProcessingStrategy) (core.ModelParams, error) {
	return router.Params(strategy, s.policy)
}

// detect runs detection with a cache in front when one is configured. Cache
// failures degrade to a direct detection pass, never to an error.
func (s *Screener) detect(ctx context.Context, text string) core.AnonymizationResult {
	if s.cache == nil {
		return detector.Detect(text)
	}

	key := cache.Key(text)

	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("screening cache read failed", "error", err)
	}
	if cached != nil {
		observability.CacheHits.WithLabelValues("hit").Inc()
		return *cached
	}
	observability.CacheHits.WithLabelValues("miss").Inc()

	detection := detector.Detect(text)

	if err := s.cache.Set(ctx, key, &detection); err != nil {
		slog.Warn("screening cache write failed", "error", err)
	}

	return detection
}
