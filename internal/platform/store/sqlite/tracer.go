// Package sqlite provides a database/sql client over modernc.org/sqlite with
// optional query tracing, mirroring the shape of a pooled-driver client
package sqlite

import (
	"context"

	"biokb/internal/platform/logger"
	pstrings "biokb/internal/platform/strings"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
	// RunID correlates the statement with the adapter sweep that issued it
	RunID string
}

// QueryTracer receives query events; nil means tracing is disabled
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a logger-backed tracer that always prints SQL regardless of
// the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "sqlite").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	elapsedMs := float64(ev.ElapsedUS) / 1000.0
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if ev.RunID != "" {
		evt = evt.Str("run_id", ev.RunID)
	}
	evt.Float64("elapsed_ms", elapsedMs).
		Bool("slow", ev.Slow).
		Str("sql", pstrings.Collapse(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("sqlite query")
}

