// Package modkit provides module wiring for source adapter packages: the
// adapter contract the runner drives, the shared Deps every adapter is built
// from, and the option set their constructors accept
package modkit

import "context"

// Adapter is the source adapter contract: download populates local files,
// update opens the bulk-update envelope and stages rows
type Adapter interface {
	Name() string
	Download(ctx context.Context) error
	Update(ctx context.Context) error
}

// Registry collects adapters built by modules so a runner can drive them
// keep this tiny so modules stay decoupled from how the runner iterates them
type Registry interface {
	AddAdapter(a Adapter)
}
