package store

import "time"

// Config aggregates the backend configuration for the knowledge-base store.
// The ingestion core has exactly one backend: a single relational connection
// that supports transactions, temp tables, and index DROP/CREATE inside a
// transaction (see SQLiteConfig).
type Config struct {
	AppName string
	SQLite  SQLiteConfig
}

// SQLiteConfig configures the on-disk relational store
type SQLiteConfig struct {
	// Path is the database file path, e.g. "./knowledgebase.db"
	Path string

	// BusyTimeout bounds how long a writer waits on SQLITE_BUSY before failing
	BusyTimeout time.Duration

	// LogSQL enables statement-level tracing through the logger
	LogSQL bool

	// ConnectRetries bounds boot-time open/ping retries
	ConnectRetries int
	PingTimeout    time.Duration
}
