package adapter

import (
	"context"
	"fmt"

	"biokb/internal/modkit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/logger"
)

// Registry collects adapters registered by modules and drives them
// sequentially; concurrent adapters against the same handle are unsupported
// (the envelope drops shared indexes and the rebuilders need quiescent
// staging tables), so RunAll never parallelizes across entries
type Registry struct {
	adapters []modkit.Adapter
}

// NewRegistry returns an empty Registry
func NewRegistry() *Registry { return &Registry{} }

// AddAdapter registers one adapter. A nil or unnamed adapter is a
// plugin-contract violation and is fatal at registration time, not deferred
// to the first run
func (r *Registry) AddAdapter(a modkit.Adapter) {
	if a == nil {
		panic("adapter: nil adapter registered")
	}
	if a.Name() == "" {
		panic("adapter: registered adapter has no name")
	}
	r.adapters = append(r.adapters, a)
}

// Adapters returns every registered adapter in registration order
func (r *Registry) Adapters() []modkit.Adapter {
	out := make([]modkit.Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// RunResult reports the outcome of driving one adapter
type RunResult struct {
	Name string
	Ok   bool
	Err  error
}

// RunAll drives every registered adapter's download() then update() in
// registration order. A transport or input-format error aborts that
// adapter's run (logged, RunResult.Ok=false) without stopping the rest; a
// storage error propagates immediately since it signals the shared
// connection/transaction is no longer trustworthy
func (r *Registry) RunAll(ctx context.Context) ([]RunResult, error) {
	log := logger.C(ctx)
	results := make([]RunResult, 0, len(r.adapters))

	for _, a := range r.adapters {
		name := a.Name()
		log.Info().Str("adapter", name).Msg("download starting")
		if err := a.Download(ctx); err != nil {
			log.Error().Str("adapter", name).Err(err).Msg("download failed, skipping update")
			results = append(results, RunResult{Name: name, Ok: false, Err: err})
			continue
		}

		log.Info().Str("adapter", name).Msg("update starting")
		if err := a.Update(ctx); err != nil {
			if isStorageErr(err) {
				return results, fmt.Errorf("adapter %s: %w", name, err)
			}
			log.Error().Str("adapter", name).Err(err).Msg("update failed")
			results = append(results, RunResult{Name: name, Ok: false, Err: err})
			continue
		}
		results = append(results, RunResult{Name: name, Ok: true})
	}
	return results, nil
}

// isStorageErr reports whether err is tagged as a storage failure: those
// escape through the envelope and must not be treated as a per-adapter
// transport/format failure that the runner can just log and move past
func isStorageErr(err error) bool {
	return perr.IsCode(err, perr.ErrorCodeDB)
}
