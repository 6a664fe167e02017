package app

import (
	"fmt"
	"time"
)

// Config holds everything an App needs to build and run a runtime.
type Config struct {
	// Providers is the directory holding the discovery index. Empty
	// disables autoloading regardless of AutoLoad.
	Providers string
	// Overlays are configuration overlay file paths, in precedence order
	// (later wins key-by-key).
	Overlays []string
	// AutoLoad enables scanning the discovery index for modules.
	AutoLoad bool

	LogFormat string
	LogLevel  string

	// ShutdownTimeout bounds one whole shutdown pass. Zero means the
	// lifecycle default.
	ShutdownTimeout time.Duration
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel != "" {
		if _, ok := logLevels[cfg.LogLevel]; !ok {
			return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
		}
	}
	return &cfg, nil
}
