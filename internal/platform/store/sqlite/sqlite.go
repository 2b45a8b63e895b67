package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Config configures the single physical connection used by the ingestion core
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// DB is a thin database/sql client tuned for a single-writer, single-connection
// workload: index DROP/CREATE and temp tables must survive across statements
// within one logical session, which only holds if every statement lands on
// the same physical connection
type DB struct {
	SQL    *sql.DB
	Tracer QueryTracer
	SlowMs int
}

// Open opens (creating if needed) the SQLite file and pins the pool to a
// single connection
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	busyMs := int64(cfg.BusyTimeout / time.Millisecond)
	if busyMs <= 0 {
		busyMs = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", cfg.Path, busyMs)

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single physical connection is required: SQLite temp tables and any
	// index DROP/CREATE performed mid-transaction must be visible to every
	// later statement in the same bulk-update envelope, which only holds if
	// the pool never hands out a second connection
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DB{SQL: sqlDB}, nil
}

// Close releases the connection
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

// Ping implements store.Pinger
func (d *DB) Ping(ctx context.Context) error { return d.SQL.PingContext(ctx) }
