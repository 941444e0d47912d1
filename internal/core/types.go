// Package core provides the shared types for the sensitive-data gateway:
// sensitivity levels, processing strategies, detection results, audit events
// and the error taxonomy used across the screening pipeline.
package core

import (
	"fmt"
	"time"
)

// SensitivityLevel is an ordered classification of how confidential a piece
// of text is. Higher values are more sensitive; threshold checks use >=.
type SensitivityLevel int

const (
	LevelPublic SensitivityLevel = iota
	LevelInternal
	LevelConfidential
	LevelTopSecret
)

// String returns the canonical lowercase name of the level.
func (l SensitivityLevel) String() string {
	switch l {
	case LevelPublic:
		return "public"
	case LevelInternal:
		return "internal"
	case LevelConfidential:
		return "confidential"
	case LevelTopSecret:
		return "top_secret"
	default:
		return fmt.Sprintf("sensitivity_level(%d)", int(l))
	}
}

// ParseLevel converts a level name back to a SensitivityLevel.
func ParseLevel(s string) (SensitivityLevel, error) {
	switch s {
	case "public":
		return LevelPublic, nil
	case "internal":
		return LevelInternal, nil
	case "confidential":
		return LevelConfidential, nil
	case "top_secret":
		return LevelTopSecret, nil
	default:
		return LevelPublic, fmt.Errorf("unknown sensitivity level: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so levels serialize as names
// in JSON audit records rather than bare integers.
func (l SensitivityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *SensitivityLevel) UnmarshalText(b []byte) error {
	level, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// ProcessingStrategy is the decision of where a piece of text may be
// processed: which external service tier, local-only, or not at all.
type ProcessingStrategy string

const (
	StrategyCloudStandard         ProcessingStrategy = "cloud_standard"
	StrategyCloudEnterprise       ProcessingStrategy = "cloud_enterprise"
	StrategyCloudEnterpriseSecure ProcessingStrategy = "cloud_enterprise_secure"
	StrategyLocalOnly             ProcessingStrategy = "local_only"
	StrategyRejected              ProcessingStrategy = "rejected"
)

// AllStrategies lists every strategy, used by metrics aggregation.
var AllStrategies = []ProcessingStrategy{
	StrategyCloudStandard,
	StrategyCloudEnterprise,
	StrategyCloudEnterpriseSecure,
	StrategyLocalOnly,
	StrategyRejected,
}

// IsCloud reports whether the strategy dispatches to an external provider.
func (s ProcessingStrategy) IsCloud() bool {
	switch s {
	case StrategyCloudStandard, StrategyCloudEnterprise, StrategyCloudEnterpriseSecure:
		return true
	}
	return false
}

// DetectionMatch records that a pattern matched, without the matched value.
// The struct holds only the pattern's type name and the masked form; the
// original substring is unrecoverable once detection completes.
type DetectionMatch struct {
	Type        string `json:"type"`
	MaskedValue string `json:"masked_value"`
}

// AnonymizationResult is the output of a detection pass over one text blob.
type AnonymizationResult struct {
	// RedactedText is the input with every structural match replaced by
	// its format-preserving mask.
	RedactedText string `json:"redacted_text"`

	// DetectedTypes lists the pattern type names that matched, sorted and
	// deduplicated.
	DetectedTypes []string `json:"detected_types"`

	// MatchCount is the total number of occurrences across all patterns.
	// A value matching two categories is counted twice.
	MatchCount int `json:"match_count"`

	// Level is the classifier's sensitivity level for the raw input.
	Level SensitivityLevel `json:"level"`

	// RequiresLocal forces on-premises handling. It is an independent
	// OR-gate input to routing, not derived from Level alone.
	RequiresLocal bool `json:"requires_local"`
}

// HasType reports whether the given pattern type was detected.
func (r *AnonymizationResult) HasType(t string) bool {
	for _, dt := range r.DetectedTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// RouteDecision is the router's verdict for one screened text.
type RouteDecision struct {
	Strategy ProcessingStrategy `json:"strategy"`

	// Permitted reports whether the content may be processed at all.
	// When false, RejectionMessage carries the user-facing explanation.
	Permitted bool `json:"permitted"`

	RejectionMessage string `json:"rejection_message,omitempty"`
}

// AuditEvent is one immutable record per routed request. Events are appended
// to the audit logs and never mutated or deleted by this subsystem.
type AuditEvent struct {
	// ID is a unique identifier for this event (UUID).
	ID string `json:"id" bson:"_id"`

	// Timestamp is when the screening decision was made.
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`

	// SessionID correlates events from one chat session.
	SessionID string `json:"session_id" bson:"session_id"`

	Level      SensitivityLevel   `json:"level" bson:"level"`
	Strategy   ProcessingStrategy `json:"strategy" bson:"strategy"`
	MatchCount int                `json:"match_count" bson:"match_count"`

	// DetectedTypes carries pattern type names only, never matched values.
	DetectedTypes []string `json:"detected_types" bson:"detected_types"`

	// ContentHash is the sha256 of the original text. The hash lets
	// compliance tooling correlate an event to known content without the
	// subsystem ever persisting the content itself.
	ContentHash string `json:"content_hash" bson:"content_hash"`

	Success      bool   `json:"success" bson:"success"`
	ErrorMessage string `json:"error_message,omitempty" bson:"error_message,omitempty"`

	// System metadata added by the recorder.
	Hostname   string `json:"hostname,omitempty" bson:"hostname,omitempty"`
	PID        int    `json:"pid,omitempty" bson:"pid,omitempty"`
	AppVersion string `json:"app_version,omitempty" bson:"app_version,omitempty"`
}

// ComplianceMetrics is an aggregate over stored audit events in a time range.
// It is computed on demand and never persisted.
type ComplianceMetrics struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalEvents     int `json:"total_events"`
	SensitiveEvents int `json:"sensitive_events"` // level > public
	RejectedEvents  int `json:"rejected_events"`

	ByLevel    map[SensitivityLevel]int   `json:"by_level"`
	ByStrategy map[ProcessingStrategy]int `json:"by_strategy"`

	// DetectedTypeFrequency counts how often each pattern type appeared
	// across all events in the range.
	DetectedTypeFrequency map[string]int `json:"detected_type_frequency"`

	// SensitivePercent is the percentage of events with level > public.
	SensitivePercent float64 `json:"sensitive_percent"`
}

// NewComplianceMetrics returns an empty metrics aggregate for a range.
func NewComplianceMetrics(from, to time.Time) *ComplianceMetrics {
	return &ComplianceMetrics{
		From:                  from,
		To:                    to,
		ByLevel:               make(map[SensitivityLevel]int),
		ByStrategy:            make(map[ProcessingStrategy]int),
		DetectedTypeFrequency: make(map[string]int),
	}
}

// Add folds a single event into the aggregate.
func (m *ComplianceMetrics) Add(e *AuditEvent) {
	m.TotalEvents++
	m.ByLevel[e.Level]++
	m.ByStrategy[e.Strategy]++
	if e.Level > LevelPublic {
		m.SensitiveEvents++
	}
	if e.Strategy == StrategyRejected {
		m.RejectedEvents++
	}
	for _, t := range e.DetectedTypes {
		m.DetectedTypeFrequency[t]++
	}
	if m.TotalEvents > 0 {
		m.SensitivePercent = float64(m.SensitiveEvents) / float64(m.TotalEvents) * 100
	}
}
