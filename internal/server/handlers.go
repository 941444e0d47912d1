// Package server provides HTTP handlers and server setup for the screening
// gateway.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"dlpgate/internal/auditlog"
	"dlpgate/internal/batch"
	"dlpgate/internal/core"
	"dlpgate/internal/screening"
)

// Handler holds the HTTP handlers
type Handler struct {
	screener *screening.Screener
	reader   auditlog.Reader
	batches  *batch.Runner
}

// NewHandler creates a new handler. The reader may be nil when auditing is
// disabled; the compliance endpoints then return 404. The batch runner may
// be nil when batch screening is disabled.
func NewHandler(screener *screening.Screener, reader auditlog.Reader, batches *batch.Runner) *Handler {
	return &Handler{
		screener: screener,
		reader:   reader,
		batches:  batches,
	}
}

// ScreeningRequest is the POST /v1/screenings request body.
type ScreeningRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Screen handles POST /v1/screenings
func (h *Handler) Screen(c echo.Context) error {
	var req ScreeningRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewConfigurationError("invalid request body: "+err.Error()))
	}

	result, err := h.screener.Screen(c.Request().Context(), req.SessionID, req.Text)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Params handles GET /v1/strategies/:strategy/params
func (h *Handler) Params(c echo.Context) error {
	strategy := core.ProcessingStrategy(c.Param("strategy"))

	params, err := h.screener.Params(strategy)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, params)
}

// PolicyViolations handles GET /v1/policy/violations
func (h *Handler) PolicyViolations(c echo.Context) error {
	violations := h.screener.Policy().Validate()
	if violations == nil {
		violations = []string{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"compliant":  len(violations) == 0,
		"violations": violations,
	})
}

// ComplianceMetrics handles GET /v1/compliance/metrics
func (h *Handler) ComplianceMetrics(c echo.Context) error {
	if h.reader == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "not_found",
				"message": "audit trail is disabled",
			},
		})
	}

	from, to, err := parseRange(c)
	if err != nil {
		return handleError(c, core.NewConfigurationError(err.Error()))
	}

	metrics, err := h.reader.Metrics(c.Request().Context(), from, to)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, metrics)
}

// ComplianceReport handles GET /v1/compliance/report
func (h *Handler) ComplianceReport(c echo.Context) error {
	if h.reader == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "not_found",
				"message": "audit trail is disabled",
			},
		})
	}

	from, to, err := parseRange(c)
	if err != nil {
		return handleError(c, core.NewConfigurationError(err.Error()))
	}

	report, err := auditlog.Report(c.Request().Context(), h.reader, from, to)
	if err != nil {
		return handleError(c, err)
	}

	return c.String(http.StatusOK, report)
}

// SessionEvents handles GET /v1/sessions/:id/events
func (h *Handler) SessionEvents(c echo.Context) error {
	if h.reader == nil {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{
				"type":    "not_found",
				"message": "audit trail is disabled",
			},
		})
	}

	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		return handleError(c, core.NewConfigurationError("session id is required"))
	}

	events, err := h.reader.EventsBySession(c.Request().Context(), sessionID)
	if err != nil {
		return handleError(c, err)
	}
	if events == nil {
		events = []core.AuditEvent{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"events":     events,
	})
}

// BatchRequest is the POST /v1/batches request body.
type BatchRequest struct {
	SessionID string   `json:"session_id"`
	Texts     []string `json:"texts"`
}

// SubmitBatch handles POST /v1/batches
func (h *Handler) SubmitBatch(c echo.Context) error {
	if h.batches == nil {
		return batchesDisabled(c)
	}

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewConfigurationError("invalid request body: "+err.Error()))
	}

	b, err := h.batches.Submit(c.Request().Context(), req.SessionID, req.Texts)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

// GetBatch handles GET /v1/batches/:id
func (h *Handler) GetBatch(c echo.Context) error {
	if h.batches == nil {
		return batchesDisabled(c)
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return handleError(c, core.NewConfigurationError("batch id is required"))
	}

	b, err := h.batches.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			return batchNotFound(c)
		}
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, b)
}

// ListBatches handles GET /v1/batches
func (h *Handler) ListBatches(c echo.Context) error {
	if h.batches == nil {
		return batchesDisabled(c)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return handleError(c, core.NewConfigurationError("invalid 'limit' parameter"))
		}
		limit = parsed
	}

	batches, err := h.batches.List(c.Request().Context(), limit, c.QueryParam("after"))
	if err != nil {
		if errors.Is(err, batch.ErrNotFound) {
			return batchNotFound(c)
		}
		return handleError(c, err)
	}
	if batches == nil {
		batches = []*core.ScreeningBatch{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batches": batches,
	})
}

func batchesDisabled(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "not_found",
			"message": "batch screening is disabled",
		},
	})
}

func batchNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "not_found",
			"message": "batch not found",
		},
	})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// parseRange reads the optional from/to query parameters (YYYY-MM-DD).
func parseRange(c echo.Context) (from, to time.Time, err error) {
	if raw := c.QueryParam("from"); raw != "" {
		from, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("'to' date precedes 'from' date")
	}
	return from, to, nil
}

// handleError converts screening errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var screeningErr *core.ScreeningError
	if errors.As(err, &screeningErr) {
		return c.JSON(screeningErr.HTTPStatusCode(), screeningErr.ToJSON())
	}

	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
