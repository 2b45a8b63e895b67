// Package adapter wires together the pieces a concrete source adapter
// needs: a Base that materializes the adapter's source_id on construction, a
// Registry the runner drives, and a tiny indented logging sink adapters use
// to narrate a run without depending on the transport that finally prints it
package adapter

import (
	"fmt"
	"strings"
	"sync"

	"biokb/internal/platform/logger"
)

// LogSink is the three-operation logging surface (log/logPush/logPop) every
// adapter narrates its run through. The transport that finally renders the
// lines is out of this package's scope; LogSink just buffers indentation
// and hands completed lines to the project logger
type LogSink struct {
	mu     sync.Mutex
	log    *logger.Logger
	depth  int
	prefix string
}

// NewLogSink builds a LogSink that writes through named, one line at a time
func NewLogSink(named *logger.Logger) *LogSink {
	if named == nil {
		named = logger.Get()
	}
	return &LogSink{log: named}
}

// Log emits one line at the current indent depth
func (s *LogSink) Log(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info().Msg(s.indent() + msg)
}

// Logf is the formatted form of Log
func (s *LogSink) Logf(format string, args ...any) { s.Log(fmt.Sprintf(format, args...)) }

// LogPush emits msg then increases the indent depth for everything logged
// until the matching LogPop
func (s *LogSink) LogPush(msg string) {
	s.mu.Lock()
	s.log.Info().Msg(s.indent() + msg)
	s.depth++
	s.mu.Unlock()
}

// LogPop decreases the indent depth and emits msg at the restored depth
func (s *LogSink) LogPop(msg string) {
	s.mu.Lock()
	if s.depth > 0 {
		s.depth--
	}
	if msg != "" {
		s.log.Info().Msg(s.indent() + msg)
	}
	s.mu.Unlock()
}

// indent must be called with mu held
func (s *LogSink) indent() string {
	if s.depth == 0 {
		return ""
	}
	return strings.Repeat("  ", s.depth)
}
