// Package schema holds the DDL for the knowledge-base tables the core
// operates over. Schema creation lives outside the core's real scope (the
// surrounding application owns migrations); this package exists so tests
// and local tooling can stand up a throwaway database without depending on
// an external migration runner
package schema

import (
	"context"
	_ "embed"
	"strings"

	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

//go:embed schema.sql
var ddl string

// Apply executes every statement in schema.sql against q. Statements are
// split on ";" since not every RowQuerier backing driver accepts batched
// multi-statement Exec calls
func Apply(ctx context.Context, q store.RowQuerier) error {
	for _, stmt := range statements(ddl) {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return perr.FromSQLitef(err, "apply schema: %s", firstLine(stmt))
		}
	}
	return nil
}

func statements(src string) []string {
	raw := strings.Split(src, ";")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
