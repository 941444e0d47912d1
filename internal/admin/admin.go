// Package admin provides the operator-facing REST API: a runtime overview
// and read-only views of the detection catalog the gateway screens with.
package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"dlpgate/internal/patterns"
	"dlpgate/internal/policy"
	"dlpgate/internal/version"
)

// Info carries the deployment facts the overview reports.
type Info struct {
	StorageType  string
	AuditEnabled bool
	CacheBackend string
}

// Handler serves admin API endpoints.
type Handler struct {
	policy    policy.EnterprisePolicy
	info      Info
	startTime time.Time
}

// NewHandler creates a new admin API handler.
func NewHandler(p policy.EnterprisePolicy, info Info) *Handler {
	return &Handler{
		policy:    p,
		info:      info,
		startTime: time.Now(),
	}
}

// Overview handles GET /admin/api/v1/overview.
func (h *Handler) Overview(c echo.Context) error {
	uptime := time.Since(h.startTime).Round(time.Second)

	return c.JSON(http.StatusOK, OverviewResponse{
		PatternCount:         len(patterns.Library()),
		KeywordCategoryCount: len(patterns.KeywordCategories()),
		Uptime:               uptime.String(),
		Version:              version.Version,
		GoVersion:            runtime.Version(),
		StorageType:          h.info.StorageType,
		AuditEnabled:         h.info.AuditEnabled,
		CacheBackend:         h.info.CacheBackend,
	})
}

// Patterns handles GET /admin/api/v1/patterns.
// It exposes the detector types, never the regexes themselves.
func (h *Handler) Patterns(c echo.Context) error {
	lib := patterns.Library()
	entries := make([]PatternEntry, 0, len(lib))
	for _, p := range lib {
		entries = append(entries, PatternEntry{Type: p.Type})
	}

	return c.JSON(http.StatusOK, PatternsResponse{
		Patterns: entries,
		Total:    len(entries),
	})
}

// Keywords handles GET /admin/api/v1/keywords.
func (h *Handler) Keywords(c echo.Context) error {
	cats := patterns.KeywordCategories()
	entries := make([]KeywordCategoryEntry, 0, len(cats))
	for _, cat := range cats {
		entries = append(entries, KeywordCategoryEntry{
			Name:         cat.Name,
			Weight:       cat.Weight,
			KeywordCount: len(cat.Keywords),
		})
	}

	return c.JSON(http.StatusOK, KeywordsResponse{
		Categories: entries,
		Total:      len(entries),
	})
}

// Policy handles GET /admin/api/v1/policy.
// It reports the effective policy switches without the rejection message
// wording, which is end-user facing.
func (h *Handler) Policy(c echo.Context) error {
	return c.JSON(http.StatusOK, PolicyResponse{
		AllowLocalFallback:   h.policy.AllowLocalFallback,
		RejectIfUnsafe:       h.policy.RejectIfUnsafe,
		DataRetentionDays:    h.policy.DataRetentionDays,
		AllowTrainingDataUse: h.policy.AllowTrainingDataUse,
		AuditEnabled:         h.policy.AuditEnabled,
		AuditRetentionDays:   h.policy.AuditRetentionDays,
		AlertOnSensitive:     h.policy.AlertOnSensitive,
		Compliant:            len(h.policy.Validate()) == 0,
	})
}
