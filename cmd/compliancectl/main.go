// Package main is the offline compliance reporting tool. It reads a stored
// audit trail directly, without a running gateway.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"dlpgate/config"
	"dlpgate/internal/auditlog"
	"dlpgate/internal/logging"
	"dlpgate/internal/storage"
	"dlpgate/internal/version"
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		rootFlag    = flag.String("root", "", "Audit root directory (file backend; overrides DLPGATE_AUDIT_ROOT)")
		fromFlag    = flag.String("from", "", "Range start, YYYY-MM-DD (inclusive)")
		toFlag      = flag.String("to", "", "Range end, YYYY-MM-DD (inclusive)")
		sessionFlag = flag.String("session", "", "Print one session's events instead of the report")
		jsonFlag    = flag.Bool("json", false, "Emit JSON instead of the plain-text report")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, "text")

	from, to, err := parseRange(*fromFlag, *toFlag)
	if err != nil {
		slog.Error("invalid date range", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	reader, cleanup, err := openReader(ctx, cfg, *rootFlag)
	if err != nil {
		slog.Error("failed to open audit trail", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if *sessionFlag != "" {
		events, err := reader.EventsBySession(ctx, *sessionFlag)
		if err != nil {
			slog.Error("failed to read session events", "error", err)
			os.Exit(1)
		}
		out, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			slog.Error("failed to encode events", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if *jsonFlag {
		metrics, err := reader.Metrics(ctx, from, to)
		if err != nil {
			slog.Error("failed to aggregate metrics", "error", err)
			os.Exit(1)
		}
		out, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			slog.Error("failed to encode metrics", "error", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	report, err := auditlog.Report(ctx, reader, from, to)
	if err != nil {
		slog.Error("failed to build report", "error", err)
		os.Exit(1)
	}
	fmt.Print(report)
}

// openReader resolves the audit reader for the configured backend. The
// returned cleanup releases any database connection.
func openReader(ctx context.Context, cfg *config.Config, rootOverride string) (auditlog.Reader, func(), error) {
	storageType := cfg.Storage.Type
	if rootOverride != "" || storageType == "" {
		storageType = storage.TypeFile
	}

	if storageType == storage.TypeFile {
		root := rootOverride
		if root == "" {
			root = cfg.Audit.Root
		}
		reader, err := auditlog.NewFileReader(root)
		if err != nil {
			return nil, nil, err
		}
		return reader, func() {}, nil
	}

	result, err := auditlog.New(ctx, auditlog.Config{
		Enabled: true,
		Root:    cfg.Audit.Root,
	}, storage.Config{
		Type: storageType,
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
	})
	if err != nil {
		return nil, nil, err
	}

	return result.Reader, func() { _ = result.Close() }, nil
}

func parseRange(fromRaw, toRaw string) (from, to time.Time, err error) {
	if fromRaw != "" {
		from, err = time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date %q: %w", fromRaw, err)
		}
	}
	if toRaw != "" {
		to, err = time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date %q: %w", toRaw, err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to precedes -from")
	}
	return from, to, nil
}
