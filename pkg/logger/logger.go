// Package logger holds the process-wide zerolog logger. Call Init once from
// main; packages then take a tagged copy with Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how Init builds the logger.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info
	// and is reported once at start-up.
	Level string
	// Pretty switches from JSON lines to the coloured console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every line as "service".
	Service string
	// Fields are extra static fields attached to every line, e.g. env.
	Fields map[string]string
}

var (
	mu          sync.Mutex
	instance    zerolog.Logger
	initialized bool
)

// Init builds the singleton on the first call and returns it. Later calls
// return the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return instance
	}

	lvl, known := parseLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(lvl)

	instance = build(opts, lvl)
	initialized = true
	if !known && strings.TrimSpace(opts.Level) != "" {
		instance.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return instance
}

func build(opts Options, lvl zerolog.Level) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if !opts.Pretty {
		ctx = ctx.Caller()
	}
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	for k, v := range opts.Fields {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

// Get returns the singleton. It panics before Init.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Component returns the singleton tagged with a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the singleton. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	instance = zerolog.Logger{}
	initialized = false
}

func parseLevel(s string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}
