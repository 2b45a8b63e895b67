// Package vocab implements the metadata vocabulary registry: idempotent,
// case-insensitive upsert of namespaces, types, relationships, roles,
// populations, and sources. Every add<X> returns the id such that
// lookup(name) == returned id and the row exists; repeated inserts are
// no-ops (INSERT OR IGNORE) rather than errors
package vocab

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

// lowerFold is the single caseless-normalization rule every vocabulary name
// goes through: Unicode-aware lowercasing rather than strings.ToLower, since
// incoming identifiers (namespace/type/role names) are not guaranteed ASCII
var lowerFold = cases.Lower(language.Und)

func normalize(s string) string {
	return lowerFold.String(strings.TrimSpace(s))
}

// Registry is a thin façade over a RowQuerier bound to the current
// transaction; it carries no state of its own
type Registry struct{}

// New constructs a Registry. It is stateless; kept as a type so call sites
// read like repo.AddX(...) alongside the staging primitives
func New() Registry { return Registry{} }

// upsert lowercases name, inserts it if missing, and returns its id
func upsert(ctx context.Context, q repokit.Queryer, table, name string) (int64, error) {
	name = normalize(name)
	if name == "" {
		return 0, perr.InvalidArgf("%s: name must not be empty", table)
	}
	if _, err := q.Exec(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s(name) VALUES (?)", table), name,
	); err != nil {
		return 0, perr.FromSQLitef(err, "insert %s", table)
	}
	return lookup(ctx, q, table, name)
}

func lookup(ctx context.Context, q repokit.Queryer, table, name string) (int64, error) {
	id, err := store.Scalar[int64](ctx, q, fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name)
	if err != nil {
		return 0, perr.FromSQLitef(err, "lookup %s %q", table, name)
	}
	return id, nil
}

// bulkUpsert performs exactly one lookup pass over names, runs insert only
// for the names that pass found no row for, and returns ids preserving input
// order. insert receives the normalized name and must leave a matching row
// behind (INSERT OR IGNORE semantics)
func bulkUpsert(ctx context.Context, q repokit.Queryer, table string, names []string, insert func(name string) error) ([]int64, error) {
	ids := make([]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	norm := make([]string, len(names))
	for i, n := range names {
		norm[i] = normalize(n)
	}

	known := make(map[string]int64, len(names))
	placeholders := strings.Repeat("?,", len(norm))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(norm))
	for i, n := range norm {
		args[i] = n
	}
	rows, err := q.Query(ctx,
		fmt.Sprintf("SELECT name, id FROM %s WHERE name IN (%s)", table, placeholders), args...)
	if err != nil {
		return nil, perr.FromSQLitef(err, "bulk lookup %s", table)
	}
	for rows.Next() {
		var name string
		var id int64
		if err := rows.Scan(&name, &id); err != nil {
			rows.Close()
			return nil, err
		}
		known[name] = id
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, n := range norm {
		if _, ok := known[n]; !ok {
			if err := insert(n); err != nil {
				return nil, err
			}
			id, err := lookup(ctx, q, table, n)
			if err != nil {
				return nil, err
			}
			known[n] = id
		}
	}

	for i, n := range norm {
		ids[i] = known[n]
	}
	return ids, nil
}

// upsertBulk is bulkUpsert for the name-only vocabulary kinds
func upsertBulk(ctx context.Context, q repokit.Queryer, table string, names []string) ([]int64, error) {
	return bulkUpsert(ctx, q, table, names, func(n string) error {
		if _, err := q.Exec(ctx,
			fmt.Sprintf("INSERT OR IGNORE INTO %s(name) VALUES (?)", table), n,
		); err != nil {
			return perr.FromSQLitef(err, "bulk insert %s", table)
		}
		return nil
	})
}

// AddNamespace upserts a namespace, recording whether it routinely maps one
// name to many regions (multigene)
func (Registry) AddNamespace(ctx context.Context, q repokit.Queryer, name string, multigene bool) (int64, error) {
	n := normalize(name)
	if n == "" {
		return 0, perr.InvalidArgf("namespace: name must not be empty")
	}
	if _, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO namespace(name, multigene) VALUES (?, ?)", n, boolToInt(multigene),
	); err != nil {
		return 0, perr.FromSQLitef(err, "insert namespace")
	}
	return lookup(ctx, q, "namespace", n)
}

// AddNamespaces is the bulk form of AddNamespace for uniformly-flagged names
func (Registry) AddNamespaces(ctx context.Context, q repokit.Queryer, names []string, multigene bool) ([]int64, error) {
	return bulkUpsert(ctx, q, "namespace", names, func(n string) error {
		if _, err := q.Exec(ctx,
			"INSERT OR IGNORE INTO namespace(name, multigene) VALUES (?, ?)", n, boolToInt(multigene),
		); err != nil {
			return perr.FromSQLitef(err, "bulk insert namespace")
		}
		return nil
	})
}

// AddType upserts a group/region type name
func (Registry) AddType(ctx context.Context, q repokit.Queryer, name string) (int64, error) {
	return upsert(ctx, q, "type", name)
}

// AddTypes is the bulk form of AddType
func (Registry) AddTypes(ctx context.Context, q repokit.Queryer, names []string) ([]int64, error) {
	return upsertBulk(ctx, q, "type", names)
}

// AddRelationship upserts a group_group relationship kind
func (Registry) AddRelationship(ctx context.Context, q repokit.Queryer, name string) (int64, error) {
	return upsert(ctx, q, "relationship", name)
}

// AddRelationships is the bulk form of AddRelationship
func (Registry) AddRelationships(ctx context.Context, q repokit.Queryer, names []string) ([]int64, error) {
	return upsertBulk(ctx, q, "relationship", names)
}

// AddSource upserts an adapter source name; every adapter run materializes
// exactly one of these on construction
func (Registry) AddSource(ctx context.Context, q repokit.Queryer, name string) (int64, error) {
	return upsert(ctx, q, "source", name)
}

// AddSources is the bulk form of AddSource
func (Registry) AddSources(ctx context.Context, q repokit.Queryer, names []string) ([]int64, error) {
	return upsertBulk(ctx, q, "source", names)
}

// RoleInfo carries the optional descriptive columns on role
type RoleInfo struct {
	Description string
	Coding      *bool
	Exon        *bool
}

// AddRole upserts a SNP role, preserving description/coding/exon on first
// insert only (subsequent calls are pure lookups per the idempotence contract)
func (Registry) AddRole(ctx context.Context, q repokit.Queryer, name string, info RoleInfo) (int64, error) {
	n := normalize(name)
	if n == "" {
		return 0, perr.InvalidArgf("role: name must not be empty")
	}
	if _, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO role(name, description, coding, exon) VALUES (?, ?, ?, ?)",
		n, info.Description, nullableBool(info.Coding), nullableBool(info.Exon),
	); err != nil {
		return 0, perr.FromSQLitef(err, "insert role")
	}
	return lookup(ctx, q, "role", n)
}

// RoleInput is one row for AddRoles
type RoleInput struct {
	Name string
	Info RoleInfo
}

// AddRoles is the bulk form of AddRole, returning ids in input order. Like
// AddRole, descriptive columns stick on first insert only; when the same
// name appears twice in rows, the first occurrence's info wins
func (Registry) AddRoles(ctx context.Context, q repokit.Queryer, rows []RoleInput) ([]int64, error) {
	names := make([]string, len(rows))
	info := make(map[string]RoleInfo, len(rows))
	for i, row := range rows {
		names[i] = row.Name
		n := normalize(row.Name)
		if _, ok := info[n]; !ok {
			info[n] = row.Info
		}
	}
	return bulkUpsert(ctx, q, "role", names, func(n string) error {
		ri := info[n]
		if _, err := q.Exec(ctx,
			"INSERT OR IGNORE INTO role(name, description, coding, exon) VALUES (?, ?, ?, ?)",
			n, ri.Description, nullableBool(ri.Coding), nullableBool(ri.Exon),
		); err != nil {
			return perr.FromSQLitef(err, "bulk insert role")
		}
		return nil
	})
}

// PopulationInfo carries the optional descriptive columns on population
type PopulationInfo struct {
	LDComment   string
	Description string
}

// AddPopulation upserts a population/LD reference panel name
func (Registry) AddPopulation(ctx context.Context, q repokit.Queryer, name string, info PopulationInfo) (int64, error) {
	n := normalize(name)
	if n == "" {
		return 0, perr.InvalidArgf("population: name must not be empty")
	}
	if _, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO population(name, ldcomment, description) VALUES (?, ?, ?)",
		n, info.LDComment, info.Description,
	); err != nil {
		return 0, perr.FromSQLitef(err, "insert population")
	}
	return lookup(ctx, q, "population", n)
}

// PopulationInput is one row for AddPopulations
type PopulationInput struct {
	Name string
	Info PopulationInfo
}

// AddPopulations is the bulk form of AddPopulation, returning ids in input
// order; when the same name appears twice in rows, the first occurrence's
// info wins
func (Registry) AddPopulations(ctx context.Context, q repokit.Queryer, rows []PopulationInput) ([]int64, error) {
	names := make([]string, len(rows))
	info := make(map[string]PopulationInfo, len(rows))
	for i, row := range rows {
		names[i] = row.Name
		n := normalize(row.Name)
		if _, ok := info[n]; !ok {
			info[n] = row.Info
		}
	}
	return bulkUpsert(ctx, q, "population", names, func(n string) error {
		pi := info[n]
		if _, err := q.Exec(ctx,
			"INSERT OR IGNORE INTO population(name, ldcomment, description) VALUES (?, ?, ?)",
			n, pi.LDComment, pi.Description,
		); err != nil {
			return perr.FromSQLitef(err, "bulk insert population")
		}
		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolToInt(*b)
}
