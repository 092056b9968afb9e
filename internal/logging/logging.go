// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger. Components derive module loggers
// from it with For.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	Level(zerolog.InfoLevel).
	With().
	Timestamp().
	Logger()

// Config controls log output.
type Config struct {
	Level string    // debug, info, warn, error (default info)
	JSON  bool      // emit JSON lines instead of console output
	Out   io.Writer // defaults to os.Stderr
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %q (expected debug, info, warn, error, off)", s)
	}
}

// New builds a logger from cfg.
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

// Init replaces the base logger.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	zerolog.DurationFieldUnit = time.Millisecond
	Logger = l
	return nil
}

// For returns a child of the base logger tagged with module.
func For(module string) zerolog.Logger {
	return Logger.With().Str("module", module).Logger()
}
