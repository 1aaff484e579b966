// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/dkeye/gamegate/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup applies cfg to the global logger. Output goes to w, stderr when nil.
func Setup(cfg config.LogConfig, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch cfg.Format {
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case "console":
		// Human-friendly output for terminal.
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}
