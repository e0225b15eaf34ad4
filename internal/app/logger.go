package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from LOG_FORMAT. "json" selects the
// structured handler for production log shipping; "pretty" (the default) and
// anything else fall back to the text handler.
func NewLogger(cfg *Config) *slog.Logger {
	format := "pretty"
	if cfg != nil && cfg.LogFormat != "" {
		format = cfg.LogFormat
	}

	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
