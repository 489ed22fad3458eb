// Package logger builds the zerolog logger of a run and attaches it to the
// context. Core packages never import this package: they log through
// zerolog.Ctx(ctx), which is a disabled logger when nothing was attached.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level      string // trace, debug, info, warn, error
	Format     string // json, console
	TimeFormat string // rfc3339, unix, unixms, unixmicro
	Output     io.Writer
}

// DefaultConfig returns JSON logs at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: "rfc3339",
		Output:     os.Stderr,
	}
}

// New builds a logger from cfg. Empty fields take their DefaultConfig value.
func New(cfg Config) (zerolog.Logger, error) {
	def := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Output == nil {
		cfg.Output = def.Output
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger: %w", err)
	}
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = timeFormat(cfg.TimeFormat)
	}

	var out io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		out = cfg.Output
	case "console":
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("logger: unknown format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// WithRun returns ctx carrying a child of l tagged with the run ID and the
// destination table.
func WithRun(ctx context.Context, l zerolog.Logger, runID, table string) context.Context {
	child := l.With().Str("run_id", runID).Str("table", table).Logger()
	return child.WithContext(ctx)
}

func timeFormat(format string) string {
	switch strings.ToLower(format) {
	case "unix":
		return zerolog.TimeFormatUnix
	case "unixms":
		return zerolog.TimeFormatUnixMs
	case "unixmicro":
		return zerolog.TimeFormatUnixMicro
	default:
		return time.RFC3339
	}
}
