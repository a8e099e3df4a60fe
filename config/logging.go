package config

import (
	"log/slog"
	"os"
)

// InitLogging sets the default slog logger: human-readable text output
// in development or debug mode, JSON output otherwise.
func InitLogging(cfg *Config) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if cfg.Debug || cfg.Environment == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
