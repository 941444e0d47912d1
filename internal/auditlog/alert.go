package auditlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"dlpgate/internal/core"
	"dlpgate/internal/httpclient"
)

// alertTimeout bounds a single webhook delivery.
const alertTimeout = 5 * time.Second

// WebhookAlerter posts a JSON summary of sensitive screenings to a
// configured receiver. Deliveries run off the request path; a failed
// delivery is logged and dropped, never retried into the screening flow.
type WebhookAlerter struct {
	url    string
	client *http.Client
	wg     sync.WaitGroup
}

// NewWebhookAlerter creates an alerter posting to the given URL.
func NewWebhookAlerter(url string) *WebhookAlerter {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = alertTimeout
	cfg.ResponseHeaderTimeout = alertTimeout

	return &WebhookAlerter{
		url:    url,
		client: httpclient.NewHTTPClient(&cfg),
	}
}

// alertPayload carries the event summary. Screened content never leaves the
// gateway, so the payload holds metadata only.
type alertPayload struct {
	EventID       string   `json:"event_id"`
	SessionID     string   `json:"session_id"`
	Timestamp     string   `json:"timestamp"`
	Level         string   `json:"level"`
	Strategy      string   `json:"strategy"`
	MatchCount    int      `json:"match_count"`
	DetectedTypes []string `json:"detected_types"`
}

// Alert queues a delivery for the event and returns immediately.
func (a *WebhookAlerter) Alert(event *core.AuditEvent) {
	if event == nil {
		return
	}

	payload := alertPayload{
		EventID:       event.ID,
		SessionID:     event.SessionID,
		Timestamp:     event.Timestamp.UTC().Format(time.RFC3339),
		Level:         event.Level.String(),
		Strategy:      string(event.Strategy),
		MatchCount:    event.MatchCount,
		DetectedTypes: event.DetectedTypes,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.deliver(payload)
	}()
}

// deliver performs one webhook POST.
func (a *WebhookAlerter) deliver(payload alertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode alert payload", "error", err)
		return
	}

	resp, err := a.client.Post(a.url, "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Error("failed to deliver sensitive-content alert",
			"error", err,
			"event_id", payload.EventID,
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.Error("alert webhook rejected delivery",
			"status", resp.StatusCode,
			"event_id", payload.EventID,
		)
	}
}

// Close waits for in-flight deliveries to finish.
func (a *WebhookAlerter) Close() error {
	a.wg.Wait()
	return nil
}
