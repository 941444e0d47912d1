package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dlpgate/internal/admin"
	"dlpgate/internal/auditlog"
	"dlpgate/internal/batch"
	"dlpgate/internal/screening"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	APIKey    string // Optional: API key for authentication
	BodyLimit string // Max request body size (echo format, e.g. "1M")
}

// New creates a new HTTP server. The batch runner and admin handler may be
// nil; the corresponding routes then respond 404.
func New(screener *screening.Screener, reader auditlog.Reader, batches *batch.Runner, adm *admin.Handler, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	handler := NewHandler(screener, reader, batches)

	// Paths that skip authentication
	authSkipPaths := []string{"/health", "/metrics"}

	// Global middleware stack (order matters)
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	bodyLimit := "1M"
	if cfg != nil && cfg.BodyLimit != "" {
		bodyLimit = cfg.BodyLimit
	}
	e.Use(middleware.BodyLimit(bodyLimit))

	if cfg != nil && cfg.APIKey != "" {
		e.Use(AuthMiddleware(cfg.APIKey, authSkipPaths))
	}

	// Public routes
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	e.POST("/v1/screenings", handler.Screen)
	e.GET("/v1/strategies/:strategy/params", handler.Params)
	e.GET("/v1/policy/violations", handler.PolicyViolations)
	e.GET("/v1/compliance/metrics", handler.ComplianceMetrics)
	e.GET("/v1/compliance/report", handler.ComplianceReport)
	e.GET("/v1/sessions/:id/events", handler.SessionEvents)
	e.POST("/v1/batches", handler.SubmitBatch)
	e.GET("/v1/batches", handler.ListBatches)
	e.GET("/v1/batches/:id", handler.GetBatch)

	if adm != nil {
		g := e.Group("/admin/api/v1")
		g.GET("/overview", adm.Overview)
		g.GET("/patterns", adm.Patterns)
		g.GET("/keywords", adm.Keywords)
		g.GET("/policy", adm.Policy)
	}

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
