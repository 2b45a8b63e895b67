package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"biokb/internal/platform/store/sqlite"
)

// openSQLite opens the SQLite backend and wraps it with our store adapter
func openSQLite(ctx context.Context, cfg SQLiteConfig, s *Store) (TxRunner, error) {
	var tracer sqlite.QueryTracer
	if cfg.LogSQL {
		tracer = sqlite.Tracer(s.Log)
	}

	const (
		defaultRetries = 6
		defaultPing    = 3 * time.Second
	)
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = defaultRetries
	}
	pingTO := cfg.PingTimeout
	if pingTO <= 0 {
		pingTO = defaultPing
	}

	var (
		db      *sqlite.DB
		lastErr error
	)
	backoff := 100 * time.Millisecond
	for range retries {
		toCtx, cancel := context.WithTimeout(ctx, pingTO)
		db, lastErr = sqlite.Open(toCtx, sqlite.Config{Path: cfg.Path, BusyTimeout: cfg.BusyTimeout})
		cancel()
		if lastErr == nil {
			break
		}
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("sqlite open failed after %d attempts: %w", retries, lastErr)
	}
	db.Tracer = tracer

	return newSQLiteAdapter(db), nil
}

// sqliteAdapter wraps *sqlite.DB and implements RowQuerier + TxRunner + Indexer
type sqliteAdapter struct {
	db    *sqlite.DB
	idx   *sqlite.IndexCache
	slow  int64
	trace sqlite.QueryTracer
}

func newSQLiteAdapter(db *sqlite.DB) *sqliteAdapter {
	return &sqliteAdapter{db: db, idx: sqlite.NewIndexCache(), trace: db.Tracer, slow: int64(db.SlowMs) * 1000}
}

func (a *sqliteAdapter) Ping(ctx context.Context) error { return a.db.Ping(ctx) }
func (a *sqliteAdapter) Close() error                   { return a.db.Close() }

func (a *sqliteAdapter) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := a.db.SQL.ExecContext(ctx, q, args...)
	a.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlTag{res}, nil
}

func (a *sqliteAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.db.SQL.QueryContext(ctx, q, args...)
	a.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return &sqlRows{r: rs}, nil
}

func (a *sqliteAdapter) QueryRow(ctx context.Context, q string, args ...any) Row {
	start := time.Now()
	r := a.db.SQL.QueryRowContext(ctx, q, args...)
	return sqlRow{r: r, after: func(scanErr error) { a.emit(ctx, q, args, start, scanErr) }}
}

func (a *sqliteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q := &sqliteTxQuerier{tx: tx, idx: a.idx, trace: a.trace, slow: a.slow}
	if err := fn(q); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DropIndexes implements Indexer on whatever q is: the open transaction when
// q is tx-bound, the pinned connection when q is this adapter
func (a *sqliteAdapter) DropIndexes(ctx context.Context, q RowQuerier, table string) error {
	tq, ok := q.(indexable)
	if !ok {
		return fmt.Errorf("store: %T does not support index operations", q)
	}
	return tq.dropIndexes(ctx, table)
}

// CreateIndexes implements Indexer on whatever q is: the open transaction when
// q is tx-bound, the pinned connection when q is this adapter
func (a *sqliteAdapter) CreateIndexes(ctx context.Context, q RowQuerier, table string) error {
	tq, ok := q.(indexable)
	if !ok {
		return fmt.Errorf("store: %T does not support index operations", q)
	}
	return tq.createIndexes(ctx, table)
}

func (a *sqliteAdapter) emit(ctx context.Context, q string, args []any, start time.Time, err error) {
	emitQuery(a.trace, a.slow, ctx, q, args, start, err)
}

// indexable is implemented by the queriers that can reach the underlying
// *sql.Tx/*sql.DB needed for index introspection
type indexable interface {
	dropIndexes(ctx context.Context, table string) error
	createIndexes(ctx context.Context, table string) error
}

func (a *sqliteAdapter) dropIndexes(ctx context.Context, table string) error {
	return a.idx.DropIndexes(ctx, a.db.SQL, table)
}

func (a *sqliteAdapter) createIndexes(ctx context.Context, table string) error {
	return a.idx.CreateIndexes(ctx, a.db.SQL, table)
}

// sqliteTxQuerier implements RowQuerier (and indexable) against an open *sql.Tx
type sqliteTxQuerier struct {
	tx    *sql.Tx
	idx   *sqlite.IndexCache
	trace sqlite.QueryTracer
	slow  int64
}

func (t *sqliteTxQuerier) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, q, args...)
	emitQuery(t.trace, t.slow, ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlTag{res}, nil
}

func (t *sqliteTxQuerier) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.tx.QueryContext(ctx, q, args...)
	emitQuery(t.trace, t.slow, ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return &sqlRows{r: rs}, nil
}

func (t *sqliteTxQuerier) QueryRow(ctx context.Context, q string, args ...any) Row {
	start := time.Now()
	r := t.tx.QueryRowContext(ctx, q, args...)
	return sqlRow{r: r, after: func(scanErr error) { emitQuery(t.trace, t.slow, ctx, q, args, start, scanErr) }}
}

func (t *sqliteTxQuerier) dropIndexes(ctx context.Context, table string) error {
	return t.idx.DropIndexes(ctx, t.tx, table)
}

func (t *sqliteTxQuerier) createIndexes(ctx context.Context, table string) error {
	return t.idx.CreateIndexes(ctx, t.tx, table)
}

func emitQuery(tr sqlite.QueryTracer, slowUS int64, ctx context.Context, q string, args []any, start time.Time, err error) {
	if tr == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	slow := slowUS >= 0 && elapsedUS >= slowUS
	runID, _ := RunID(ctx)
	tr.OnQuery(ctx, sqlite.QueryEvent{SQL: q, Args: args, ElapsedUS: elapsedUS, Err: err, Slow: slow, RunID: runID})
}

// sql.Result/sql.Rows/sql.Row adapters to our tiny Row/Rows/CommandTag

type sqlTag struct{ r sql.Result }

func (t sqlTag) String() string {
	n, _ := t.r.RowsAffected()
	return fmt.Sprintf("EXEC %d", n)
}
func (t sqlTag) RowsAffected() int64 {
	n, _ := t.r.RowsAffected()
	return n
}

type sqlRows struct{ r *sql.Rows }

func (x *sqlRows) Next() bool            { return x.r.Next() }
func (x *sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x *sqlRows) Err() error            { return x.r.Err() }
func (x *sqlRows) Close()                { _ = x.r.Close() }
func (x *sqlRows) Columns() []string {
	cols, err := x.r.Columns()
	if err != nil {
		return nil
	}
	return cols
}

type sqlRow struct {
	r     *sql.Row
	after func(error)
}

func (x sqlRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}
