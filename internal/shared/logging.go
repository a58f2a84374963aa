package shared

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitLogger installs the default slog logger writing to stderr, keeping
// stdout for rendered diagnostics.
func InitLogger(format, level string) *slog.Logger {
	return NewLogger(os.Stderr, format, level)
}

// NewLogger builds a logger and makes it the slog default.
func NewLogger(w io.Writer, format, level string) *slog.Logger {
	var h slog.Handler
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
