package auditlog

import (
	"testing"
	"time"

	"dlpgate/internal/core"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty",
			text: "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "abc",
			text: "abc",
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentHash(tt.text); got != tt.want {
				t.Errorf("ContentHash(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	result := core.AnonymizationResult{
		RedactedText:  "Mi DNI es *****8Z",
		DetectedTypes: []string{"dni"},
		MatchCount:    1,
		Level:         core.LevelTopSecret,
		RequiresLocal: true,
	}
	decision := core.RouteDecision{
		Strategy:  core.StrategyLocalOnly,
		Permitted: true,
	}

	before := time.Now().UTC()
	event := NewEvent("sess-42", "Mi DNI es 12345678Z", result, decision, "1.2.3")
	after := time.Now().UTC()

	if event.ID == "" {
		t.Error("ID is empty")
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Errorf("Timestamp %v outside [%v, %v]", event.Timestamp, before, after)
	}
	if event.SessionID != "sess-42" {
		t.Errorf("SessionID = %q, want sess-42", event.SessionID)
	}
	if event.Level != core.LevelTopSecret {
		t.Errorf("Level = %s, want top_secret", event.Level)
	}
	if event.Strategy != core.StrategyLocalOnly {
		t.Errorf("Strategy = %s, want local_only", event.Strategy)
	}
	if event.MatchCount != 1 {
		t.Errorf("MatchCount = %d, want 1", event.MatchCount)
	}
	if event.ContentHash != ContentHash("Mi DNI es 12345678Z") {
		t.Errorf("ContentHash = %q, want hash of the original text", event.ContentHash)
	}
	if !event.Success {
		t.Error("Success = false, want the decision's Permitted value")
	}
	if event.PID == 0 {
		t.Error("PID is unset")
	}
	if event.AppVersion != "1.2.3" {
		t.Errorf("AppVersion = %q, want 1.2.3", event.AppVersion)
	}
}

func TestNewEventRejectedDecision(t *testing.T) {
	decision := core.RouteDecision{
		Strategy:         core.StrategyRejected,
		Permitted:        false,
		RejectionMessage: "bloqueado",
	}

	event := NewEvent("sess-1", "texto", core.AnonymizationResult{}, decision, "dev")

	if event.Success {
		t.Error("Success = true for a rejected decision, want false")
	}
	if event.Strategy != core.StrategyRejected {
		t.Errorf("Strategy = %s, want rejected", event.Strategy)
	}
}

func TestEnrich(t *testing.T) {
	e := &core.AuditEvent{}
	enrich(e, "2.0.0")

	if e.ID == "" {
		t.Error("ID not filled")
	}
	if e.Timestamp.IsZero() {
		t.Error("Timestamp not filled")
	}
	if e.PID == 0 {
		t.Error("PID not filled")
	}
	if e.AppVersion != "2.0.0" {
		t.Errorf("AppVersion = %q, want 2.0.0", e.AppVersion)
	}
}

func TestEnrichPreservesExistingFields(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	e := &core.AuditEvent{
		ID:         "fixed-id",
		Timestamp:  ts,
		Hostname:   "workstation-7",
		PID:        4242,
		AppVersion: "1.0.0",
	}

	enrich(e, "9.9.9")

	if e.ID != "fixed-id" {
		t.Errorf("ID = %q, want fixed-id", e.ID)
	}
	if !e.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, ts)
	}
	if e.Hostname != "workstation-7" || e.PID != 4242 || e.AppVersion != "1.0.0" {
		t.Errorf("existing metadata overwritten: %+v", e)
	}
}
