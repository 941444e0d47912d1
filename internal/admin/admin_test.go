package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dlpgate/internal/patterns"
	"dlpgate/internal/policy"
)

func newTestHandler(p policy.EnterprisePolicy) (*Handler, *echo.Echo) {
	h := NewHandler(p, Info{
		StorageType:  "sqlite",
		AuditEnabled: true,
		CacheBackend: "memory",
	})
	e := echo.New()
	e.GET("/admin/api/v1/overview", h.Overview)
	e.GET("/admin/api/v1/patterns", h.Patterns)
	e.GET("/admin/api/v1/keywords", h.Keywords)
	e.GET("/admin/api/v1/policy", h.Policy)
	return h, e
}

func doGet(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOverview(t *testing.T) {
	_, e := newTestHandler(policy.Default())

	rec := doGet(t, e, "/admin/api/v1/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OverviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, len(patterns.Library()), resp.PatternCount)
	assert.Equal(t, len(patterns.KeywordCategories()), resp.KeywordCategoryCount)
	assert.Equal(t, "sqlite", resp.StorageType)
	assert.Equal(t, "memory", resp.CacheBackend)
	assert.True(t, resp.AuditEnabled)
	assert.NotEmpty(t, resp.Uptime)
	assert.NotEmpty(t, resp.GoVersion)
}

func TestPatterns(t *testing.T) {
	_, e := newTestHandler(policy.Default())

	rec := doGet(t, e, "/admin/api/v1/patterns")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PatternsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, len(patterns.Library()), resp.Total)
	require.Len(t, resp.Patterns, resp.Total)

	types := make(map[string]bool, len(resp.Patterns))
	for _, p := range resp.Patterns {
		assert.NotEmpty(t, p.Type)
		types[p.Type] = true
	}
	assert.True(t, types[patterns.TypeDNI])
	assert.True(t, types[patterns.TypeIBAN])

	assert.NotContains(t, rec.Body.String(), "regex")
}

func TestKeywords(t *testing.T) {
	_, e := newTestHandler(policy.Default())

	rec := doGet(t, e, "/admin/api/v1/keywords")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KeywordsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, len(patterns.KeywordCategories()), resp.Total)
	for _, cat := range resp.Categories {
		assert.NotEmpty(t, cat.Name)
		assert.Positive(t, cat.Weight)
		assert.Positive(t, cat.KeywordCount)
	}
}

func TestPolicyCompliant(t *testing.T) {
	_, e := newTestHandler(policy.Default())

	rec := doGet(t, e, "/admin/api/v1/policy")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PolicyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Compliant)
	assert.True(t, resp.AllowLocalFallback)
	assert.Equal(t, policy.MaxDataRetentionDays, resp.DataRetentionDays)
}

func TestPolicyNonCompliant(t *testing.T) {
	p := policy.Default()
	p.AllowTrainingDataUse = true
	_, e := newTestHandler(p)

	rec := doGet(t, e, "/admin/api/v1/policy")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PolicyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Compliant)
	assert.True(t, resp.AllowTrainingDataUse)
}
