package auditlog

import (
	"context"
	"time"

	"dlpgate/internal/core"
)

// Reader provides read access to the stored audit trail for compliance
// tooling. Both bounds are inclusive at day precision.
type Reader interface {
	// Metrics aggregates every event in [from, to] into compliance
	// metrics. An empty range yields an empty aggregate, not an error.
	Metrics(ctx context.Context, from, to time.Time) (*core.ComplianceMetrics, error)

	// EventsBySession returns the events recorded for one chat session in
	// chronological order.
	EventsBySession(ctx context.Context, sessionID string) ([]core.AuditEvent, error)
}

// inRange reports whether ts falls inside the inclusive day-precision range.
func inRange(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && !ts.Before(to.AddDate(0, 0, 1)) {
		return false
	}
	return true
}
