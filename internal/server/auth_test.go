package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer(apiKey string) *echo.Echo {
	e := echo.New()
	e.Use(AuthMiddleware(apiKey, []string{"/health"}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/v1/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})
	return e
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		path       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no api key configured allows all",
			apiKey:     "",
			path:       "/v1/protected",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			apiKey:     "secret-key",
			path:       "/v1/protected",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "missing authorization header",
		},
		{
			name:       "wrong scheme",
			apiKey:     "secret-key",
			path:       "/v1/protected",
			authHeader: "Basic secret-key",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid authorization header format",
		},
		{
			name:       "wrong key",
			apiKey:     "secret-key",
			path:       "/v1/protected",
			authHeader: "Bearer not-the-key",
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid api key",
		},
		{
			name:       "correct key",
			apiKey:     "secret-key",
			path:       "/v1/protected",
			authHeader: "Bearer secret-key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "skip path bypasses auth",
			apiKey:     "secret-key",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newAuthTestServer(tt.apiKey)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
