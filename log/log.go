// Package log provides the structured, leveled logging used by every
// component in this module. It wraps zerolog with a process-wide logger
// configured once at startup, per-component loggers derived from it with a
// "component" field, and optional rotation via lumberjack.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	base zerolog.Logger
	once sync.Once
)

// Options configures the process-wide logger. Zero value logs Info and
// above to stderr.
type Options struct {
	// Level is one of "error", "warn", "info", "debug".
	Level string
	// File, when non-empty, routes output through a rotating writer instead
	// of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init configures the process-wide logger. Safe to call once; later calls
// are no-ops.
func Init(opts Options) {
	once.Do(func() {
		var w io.Writer = os.Stderr
		if opts.File != "" {
			w = &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    opts.MaxSizeMB,
				MaxBackups: opts.MaxBackups,
				MaxAge:     opts.MaxAgeDays,
			}
		}
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		base = zerolog.New(w).With().Timestamp().Logger().Level(levelOf(opts.Level))
	})
}

func levelOf(name string) zerolog.Level {
	switch name {
	case "error", "Error":
		return zerolog.ErrorLevel
	case "warn", "Warn":
		return zerolog.WarnLevel
	case "debug", "Debug":
		return zerolog.DebugLevel
	case "", "info", "Info":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a logger tagged with the given component name (e.g.
// "transport", "atqueue", "orchestrator"). If Init was never called, it
// lazily defaults to an Info-level stderr logger.
func Component(name string) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		base = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	})
	return base.With().Str("component", name).Logger()
}
