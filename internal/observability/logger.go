// Package observability wires structured logging and Prometheus metrics
// for the aggregation service.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig controls log output.
type LoggerConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output overrides the destination; defaults to stderr.
	Output io.Writer
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "resource-aggregator").
		Logger()
}
