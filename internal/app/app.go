// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the screening gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"dlpgate/config"
	"dlpgate/internal/admin"
	"dlpgate/internal/auditlog"
	"dlpgate/internal/batch"
	"dlpgate/internal/cache"
	"dlpgate/internal/core"
	"dlpgate/internal/policy"
	"dlpgate/internal/screening"
	"dlpgate/internal/server"
	"dlpgate/internal/storage"
	"dlpgate/internal/version"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config   *config.Config
	policy   policy.EnterprisePolicy
	audit    *auditlog.Result
	cache    cache.Cache
	screener *screening.Screener
	batches  *batch.Runner
	server   *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	p, err := cfg.LoadPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to load enterprise policy: %w", err)
	}
	if violations := p.Validate(); len(violations) > 0 {
		for _, v := range violations {
			slog.Error("enterprise policy violation", "violation", v)
		}
		return nil, core.NewConfigurationError(
			fmt.Sprintf("enterprise policy has %d violation(s), refusing to start", len(violations)))
	}
	app.policy = p

	auditResult, err := auditlog.New(ctx, buildAuditConfig(cfg), buildStorageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}
	app.audit = auditResult

	screeningCache, err := buildCache(cfg.Cache)
	if err != nil {
		closeErr := auditResult.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w (also: audit close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	app.cache = screeningCache

	app.screener = screening.New(p, screeningCache, auditResult.Logger, version.Version)

	batchStore, err := batch.New(ctx, auditResult.Storage)
	if err != nil {
		closeErr := auditResult.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize batch store: %w (also: audit close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize batch store: %w", err)
	}
	app.batches = batch.NewRunner(batchStore, app.screener)

	app.logStartupInfo()

	storageType := cfg.Storage.Type
	if storageType == "" {
		storageType = storage.TypeFile
	}
	adm := admin.NewHandler(p, admin.Info{
		StorageType:  storageType,
		AuditEnabled: cfg.Audit.Enabled,
		CacheBackend: cacheBackendName(cfg.Cache.Backend),
	})

	serverCfg := &server.Config{
		APIKey:    cfg.Server.APIKey,
		BodyLimit: cfg.Server.BodyLimit,
	}
	app.server = server.New(app.screener, auditResult.Reader, app.batches, adm, serverCfg)

	return app, nil
}

// Screener returns the screening pipeline.
func (a *App) Screener() *screening.Screener {
	return a.screener
}

// AuditLogger returns the audit recorder interface.
func (a *App) AuditLogger() auditlog.LoggerInterface {
	if a.audit == nil {
		return nil
	}
	return a.audit.Logger
}

// AuditReader returns the compliance reader, nil when auditing is disabled.
func (a *App) AuditReader() auditlog.Reader {
	if a.audit == nil {
		return nil
	}
	return a.audit.Reader
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order:
// the HTTP server stops accepting requests, the batch runner drains its
// in-flight work, then the cache closes, then the audit recorder flushes its
// remaining events.
//
// Shutdown is idempotent and safe for repeated calls. It attempts every
// close step, aggregates failures, and returns a joined error if any step
// fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.batches != nil {
		if err := a.batches.Close(); err != nil {
			slog.Error("batch runner close error", "error", err)
			errs = append(errs, fmt.Errorf("batch runner close: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			slog.Error("audit close error", "error", err)
			errs = append(errs, fmt.Errorf("audit close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Server.APIKey == "" {
		slog.Warn("SECURITY WARNING: DLPGATE_API_KEY not set - server running in UNSAFE MODE",
			"security_risk", "unauthenticated access allowed",
			"recommendation", "set DLPGATE_API_KEY environment variable to secure this gateway")
	} else {
		slog.Info("authentication enabled", "mode", "api_key")
	}

	slog.Info("enterprise policy loaded",
		"allow_local_fallback", a.policy.AllowLocalFallback,
		"reject_if_unsafe", a.policy.RejectIfUnsafe,
		"audit_enabled", a.policy.AuditEnabled,
	)

	if cfg.Audit.Enabled {
		slog.Info("audit trail enabled",
			"storage_type", cfg.Storage.Type,
			"retention_days", cfg.Audit.RetentionDays,
			"alert_on_sensitive", cfg.Audit.AlertOnSensitive,
		)
	} else {
		slog.Info("audit trail disabled")
	}

	slog.Info("screening cache configured", "backend", cfg.Cache.Backend)
}

// buildAuditConfig creates an auditlog.Config from the application config.
// The policy's audit switches win over the environment so a stricter policy
// document cannot be silently relaxed.
func buildAuditConfig(cfg *config.Config) auditlog.Config {
	auditCfg := auditlog.DefaultConfig()
	auditCfg.Enabled = cfg.Audit.Enabled
	auditCfg.Root = cfg.Audit.Root
	auditCfg.BufferSize = cfg.Audit.BufferSize
	auditCfg.FlushInterval = cfg.Audit.FlushInterval
	auditCfg.WriteTimeout = cfg.Audit.WriteTimeout
	auditCfg.RetentionDays = cfg.Audit.RetentionDays
	auditCfg.AlertOnSensitive = cfg.Audit.AlertOnSensitive
	auditCfg.AlertWebhookURL = cfg.Audit.AlertWebhookURL
	auditCfg.AppVersion = version.Version
	return auditCfg
}

// buildStorageConfig creates a storage.Config from the application config.
func buildStorageConfig(cfg *config.Config) storage.Config {
	storageCfg := storage.Config{
		Type: cfg.Storage.Type,
		SQLite: storage.SQLiteConfig{
			Path: cfg.Storage.SQLitePath,
		},
		PostgreSQL: storage.PostgreSQLConfig{
			URL:      cfg.Storage.PGURL,
			MaxConns: cfg.Storage.PGMaxConns,
		},
		MongoDB: storage.MongoDBConfig{
			URL:      cfg.Storage.MongoURL,
			Database: cfg.Storage.MongoDB,
		},
	}

	if storageCfg.Type == "" {
		storageCfg.Type = storage.TypeFile
	}

	return storageCfg
}

// cacheBackendName normalizes the configured cache backend for reporting.
func cacheBackendName(backend string) string {
	if backend == "" {
		return "none"
	}
	return backend
}

// buildCache creates the screening cache for the configured backend.
func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "local":
		return cache.NewLocalCache(cfg.MaxEntries, cfg.TTL), nil
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.TTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (valid: none, local, redis)", cfg.Backend)
	}
}
