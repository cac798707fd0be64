package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	base  zerolog.Logger
	ready atomic.Bool
)

// Options configures the global logger.
//
// Fields:
//   - Level: debug|info|warn|error (default: info)
//   - Pretty: human-readable console output instead of JSON
//   - Out: destination; defaults to os.Stdout
type Options struct {
	Level  string
	Pretty bool
	Out    io.Writer
}

// Init configures the global JSON logger.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opts.Out != nil {
		w = opts.Out
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(opts.Level))
	ready.Store(true)
}

// L returns the global logger. Call Init() once on startup; until then an
// info-level JSON logger on stdout is used.
func L() *zerolog.Logger {
	if !ready.Load() {
		Init(Options{})
	}
	return &base
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
