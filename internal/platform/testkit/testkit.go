// Package testkit provides the assertion helpers shared across this repo's
// tests
package testkit

import (
	"strings"
	"testing"
)

// capture runs fn and returns whatever it panicked with, nil when it
// returned normally
func capture(fn func()) (recovered any) {
	defer func() { recovered = recover() }()
	fn()
	return nil
}

// MustPanic asserts that fn panics and hands back the recovered value so
// callers can assert on the message
func MustPanic(t *testing.T, fn func()) any {
	t.Helper()
	recovered := capture(fn)
	if recovered == nil {
		t.Fatal("expected panic, got none")
	}
	return recovered
}

// MustNotPanic asserts that fn returns normally, reporting what it panicked
// with when it doesn't
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	if recovered := capture(fn); recovered != nil {
		t.Fatalf("unexpected panic: %v", recovered)
	}
}

// MustContain asserts that haystack contains needle. The failure quotes a
// bounded slice of the haystack so a large captured log stays readable
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	const quoteLimit = 2048
	shown := haystack
	if len(shown) > quoteLimit {
		shown = shown[:quoteLimit] + "... (truncated)"
	}
	t.Fatalf("expected output to contain %q in:\n%s", needle, shown)
}
