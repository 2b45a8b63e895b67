package schema

import (
	"context"
	"testing"

	"biokb/internal/platform/store"
)

// OpenTest stands up a throwaway in-memory database with the schema applied,
// for use by core package tests. Each call gets its own isolated database
func OpenTest(t *testing.T) store.RowQuerier {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Config{SQLite: store.SQLiteConfig{Path: ":memory:"}})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := Apply(ctx, s.DB); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s.DB
}

// OpenTestTx is OpenTest but returns the full store.TxRunner, for callers
// (the bulk-update envelope, adapter runners) that need to open transactions
// rather than just issue ad-hoc statements
func OpenTestTx(t *testing.T) store.TxRunner {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Config{SQLite: store.SQLiteConfig{Path: ":memory:"}})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := Apply(ctx, s.DB); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s.DB
}
