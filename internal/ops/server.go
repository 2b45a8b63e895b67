// Package ops exposes a small operator-facing HTTP surface over a running
// ingestion core: liveness, the set of registered adapters, and a manual
// trigger for a full adapter sweep. This sits alongside the core, not inside
// it. The core itself has no network surface of its own, and this is not a
// query layer over the knowledge base: it never reads the staging or derived
// tables, only the in-memory run registry
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"biokb/internal/core/adapter"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/logger"
	"biokb/internal/platform/store"
	ptime "biokb/internal/platform/time"
)

// Runner is the subset of adapter.Registry the ops server drives
type Runner interface {
	Adapters() []interface{ Name() string }
	RunAll(ctx context.Context) ([]adapter.RunResult, error)
}

// registryRunner adapts *adapter.Registry to Runner without leaking its
// concrete adapter type into this package's surface
type registryRunner struct{ reg *adapter.Registry }

func (r registryRunner) Adapters() []interface{ Name() string } {
	all := r.reg.Adapters()
	out := make([]interface{ Name() string }, len(all))
	for i, a := range all {
		out[i] = a
	}
	return out
}

func (r registryRunner) RunAll(ctx context.Context) ([]adapter.RunResult, error) { return r.reg.RunAll(ctx) }

// NewRunner wraps reg for use by Server
func NewRunner(reg *adapter.Registry) Runner { return registryRunner{reg: reg} }

// RunRecord is one completed sweep, kept in memory for /runs
type RunRecord struct {
	ID          string              `json:"id"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Duration    time.Duration       `json:"duration_ns"`
	Results     []adapter.RunResult `json:"results"`
	Err         string              `json:"error,omitempty"`
}

// Server is the operator HTTP surface; a zero Server is not usable, build
// one with New
type Server struct {
	runner Runner

	mu      sync.Mutex
	history []RunRecord
	running bool
}

// New builds a Server driving runner
func New(runner Runner) *Server {
	return &Server{runner: runner}
}

// Router assembles the chi mux: CORS for any operator dashboard origin,
// then the three routes this surface exposes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		MaxAge:           300,
		AllowCredentials: false,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/adapters", s.handleAdapters)
	r.Get("/runs", s.handleRunHistory)
	r.Post("/runs", s.handleTriggerRun)
	return r
}

// handleHealthz reports process liveness; a real readiness probe would Ping
// the store, which this package deliberately doesn't depend on
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdapters lists every adapter registered with the runner
func (s *Server) handleAdapters(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0)
	for _, a := range s.runner.Adapters() {
		names = append(names, a.Name())
	}
	writeJSON(w, http.StatusOK, map[string]any{"adapters": names})
}

// handleRunHistory returns every recorded sweep, most recent first
func (s *Server) handleRunHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]RunRecord, len(s.history))
	for i, rec := range s.history {
		out[len(out)-1-i] = rec
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// handleTriggerRun kicks off RunAll synchronously; a second request while
// one is in flight is rejected rather than queued, since the core supports
// exactly one writer
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		status, wire := perr.HTTP(perr.Conflictf("a run is already in progress"))
		writeJSON(w, status, wire)
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	rec := RunRecord{ID: uuid.NewString(), StartedAt: time.Now()}
	ctx := store.WithRunID(logger.WithRun(r.Context(), rec.ID, ""), rec.ID)
	start := time.Now()

	results, err := s.runner.RunAll(ctx)
	rec.Duration = time.Since(start)
	rec.CompletedAt = ptime.Ptr(time.Now())
	rec.Results = results
	if err != nil {
		rec.Err = err.Error()
		logger.Named("ops").Error().Err(err).Str("run_id", rec.ID).Msg("adapter sweep aborted")
	}

	s.mu.Lock()
	s.history = append(s.history, rec)
	s.mu.Unlock()

	status := http.StatusOK
	if err != nil {
		status = perr.HTTPStatus(err)
	}
	writeJSON(w, status, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
