package store

import "context"

type runIDKey struct{}

// WithRunID attaches an adapter-run id to the context, used to correlate every
// statement a single download()/update() invocation issues in the query log
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID retrieves the adapter-run id from context if present
func RunID(ctx context.Context) (string, bool) {
	v := ctx.Value(runIDKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}
