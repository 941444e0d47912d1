// Package logging configures the process-wide slog logger: colorized output
// on interactive terminals, JSON lines otherwise.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Setup installs the default slog logger. Format "json" forces JSON lines;
// "text" picks colorized output when stdout is a terminal and plain JSON
// when redirected, so piped logs stay machine-readable.
func Setup(level, format string) {
	lvl := parseLevel(level)

	var handler slog.Handler
	switch {
	case format == "json" || !term.IsTerminal(int(os.Stdout.Fd())):
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		})
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
