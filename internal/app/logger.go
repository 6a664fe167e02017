package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted log-level names to slog levels. NewConfig
// validates against the same table, so a validated Config always hits it.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the isolated logger one runtime writes to. It never
// touches the process-global logger. An empty level resolves to info (the
// slog zero value), an empty format to text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[level]}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
