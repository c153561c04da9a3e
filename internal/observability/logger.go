package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON to stdout, trace-aware, debug
// level in dev.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
