package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig controls the process logger.
type LogConfig struct {
	Level       string
	Format      string // json|text
	Environment string
	Service     string
}

// NoOpLogger discards everything. Used by tests.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewLogger builds the process-wide slog logger.
func NewLogger(cfg LogConfig) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	if cfg.Environment != "" {
		logger = logger.With(slog.String("environment", cfg.Environment))
	}
	return logger
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
