// Package logger owns the process-wide zerolog root for the ingestion core,
// plus the run-scoped children that let every line an adapter sweep emits be
// correlated by run id
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"biokb/internal/platform/config/raw"

	"github.com/rs/zerolog"
)

// Logger is the project-wide logging type - today it's just a zerolog.Logger, but it can be swapped later
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	// Level is a zerolog level name ("info", "warn", ...); anything
	// unparseable falls back to debug so a typo never silences the process
	Level string

	// Format is "json" for machine-readable output, anything else gets the
	// human console writer (sweeps are usually watched by a person)
	Format string

	// Service tags every line with the process name
	Service string

	// WithCaller annotates lines with the file:line of the call site
	WithCaller bool

	// Writer overrides the destination; stdout when nil
	Writer io.Writer
}

// FromEnv builds Options using the logging-free raw config view (no cycles)
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      rc.Get("LEVEL", "info"),
		Format:     rc.Get("FORMAT", "console"),
		Service:    rc.Get("SERVICE", "ingestcore"),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger; only the first call wins, so tests that Init
// with a buffer before anything logs capture everything
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opt.Level)))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.DebugLevel
		}

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		ctx := zerolog.New(w).Level(lvl).With().Timestamp()
		if opt.Service != "" {
			ctx = ctx.Str("service", opt.Service)
		}
		log := ctx.Logger()
		if opt.WithCaller {
			log = log.With().Caller().Logger()
		}
		root.Store(&log)
	})
}

// Get returns the root logger, initializing it from the environment on first
// use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

type ctxKey struct{ name string }

var (
	keyRunID   = ctxKey{"run_id"}
	keyAdapter = ctxKey{"adapter"}
)

// WithRun annotates ctx with the sweep's run id and, when already known, the
// adapter being driven
func WithRun(ctx context.Context, runID, adapterName string) context.Context {
	if runID != "" {
		ctx = context.WithValue(ctx, keyRunID, runID)
	}
	if adapterName != "" {
		ctx = context.WithValue(ctx, keyAdapter, adapterName)
	}
	return ctx
}

// C returns a child logger enriched from ctx (run_id, adapter)
func C(ctx context.Context) *Logger {
	l := Get()
	builder := l.With()
	if v, ok := ctx.Value(keyRunID).(string); ok && v != "" {
		builder = builder.Str("run_id", v)
	}
	if v, ok := ctx.Value(keyAdapter).(string); ok && v != "" {
		builder = builder.Str("adapter", v)
	}
	ll := builder.Logger()
	return &ll
}
