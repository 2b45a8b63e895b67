package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Queryer is the minimal surface DropIndexes/CreateIndexes need; it is
// satisfied by both *sql.DB and *sql.Tx so the envelope can call it mid
// transaction
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// IndexCache remembers the CREATE INDEX statements dropped for a table so
// they can be recreated verbatim once bulk writes finish. SQLite's
// sqlite_master row for an index is NULL only for indexes implied by a
// PRIMARY KEY/UNIQUE constraint, which is exactly the set we must leave alone
type IndexCache struct {
	mu      sync.Mutex
	dropped map[string][]string // table -> CREATE INDEX statements
}

// NewIndexCache constructs an empty cache
func NewIndexCache() *IndexCache { return &IndexCache{dropped: map[string][]string{}} }

// DropIndexes drops every explicit secondary index on table and remembers
// their definitions for CreateIndexes
func (c *IndexCache) DropIndexes(ctx context.Context, q Queryer, table string) error {
	rows, err := q.QueryContext(ctx,
		`SELECT name, sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL`,
		table,
	)
	if err != nil {
		return fmt.Errorf("sqlite: list indexes on %s: %w", table, err)
	}
	var names, stmts []string
	for rows.Next() {
		var name, createSQL string
		if err := rows.Scan(&name, &createSQL); err != nil {
			rows.Close()
			return err
		}
		names = append(names, name)
		stmts = append(stmts, createSQL)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, name := range names {
		if _, err := q.ExecContext(ctx, fmt.Sprintf("DROP INDEX `%s`", name)); err != nil {
			return fmt.Errorf("sqlite: drop index %s: %w", name, err)
		}
	}

	c.mu.Lock()
	c.dropped[table] = append(c.dropped[table], stmts...)
	c.mu.Unlock()
	return nil
}

// CreateIndexes recreates every index previously dropped for table and clears
// the cache entry. Safe to call even when nothing was dropped
func (c *IndexCache) CreateIndexes(ctx context.Context, q Queryer, table string) error {
	c.mu.Lock()
	stmts := c.dropped[table]
	delete(c.dropped, table)
	c.mu.Unlock()

	for _, stmt := range stmts {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: recreate index on %s: %w", table, err)
		}
	}
	return nil
}
