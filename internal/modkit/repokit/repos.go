// Package repokit provides the shared SQL-surface types the ingestion
// primitives are written against, so that vocab/staging/resolver code names
// one vocabulary of types regardless of which physical backend the store
// package wires underneath
package repokit

import (
	"context"

	"biokb/internal/platform/store"
)

// Queryer is the read and write surface the vocabulary, staging, and
// resolver primitives take; inside a bulk-update envelope it is always the
// transaction-bound querier
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction using the provided TxRunner
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
