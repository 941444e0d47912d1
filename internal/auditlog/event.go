package auditlog

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/google/uuid"

	"dlpgate/internal/core"
)

// hostname is resolved once at startup; a lookup failure leaves it empty and
// events simply omit the field.
var hostname, _ = os.Hostname()

// ContentHash returns the hex sha256 of the original text. Only the hash ever
// reaches the audit trail.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// NewEvent builds an enriched audit event for one routing decision. The
// original text is consumed here for hashing and never stored.
func NewEvent(sessionID, text string, result core.AnonymizationResult, decision core.RouteDecision, appVersion string) *core.AuditEvent {
	return &core.AuditEvent{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		SessionID:     sessionID,
		Level:         result.Level,
		Strategy:      decision.Strategy,
		MatchCount:    result.MatchCount,
		DetectedTypes: result.DetectedTypes,
		ContentHash:   ContentHash(text),
		Success:       decision.Permitted,
		Hostname:      hostname,
		PID:           os.Getpid(),
		AppVersion:    appVersion,
	}
}

// enrich fills in the fields the recorder owns on an externally-built event.
// Already-set identifiers are preserved so retries do not duplicate IDs.
func enrich(e *core.AuditEvent, appVersion string) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Hostname == "" {
		e.Hostname = hostname
	}
	if e.PID == 0 {
		e.PID = os.Getpid()
	}
	if e.AppVersion == "" {
		e.AppVersion = appVersion
	}
}
