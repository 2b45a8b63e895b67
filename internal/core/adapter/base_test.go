package adapter

import (
	"context"
	"strings"
	"testing"

	"biokb/internal/core/schema"
	"biokb/internal/platform/testkit"
)

func TestNewBase_MaterializesSourceID(t *testing.T) {
	tx := schema.OpenTestTx(t)
	ctx := context.Background()

	base, err := NewBase(ctx, tx, "dbsnp_role", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewBase: %v", err)
	}
	if base.SourceID <= 0 {
		t.Fatalf("SourceID = %d, want > 0", base.SourceID)
	}
	if base.Name() != "dbsnp_role" {
		t.Fatalf("Name = %q", base.Name())
	}
	if base.Staging.SourceID != base.SourceID {
		t.Fatal("staging must be bound to the adapter's source_id")
	}

	// re-running the same adapter reuses the same source row
	again, err := NewBase(ctx, tx, "dbsnp_role", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewBase again: %v", err)
	}
	if again.SourceID != base.SourceID {
		t.Fatalf("source_id changed across runs: %d vs %d", again.SourceID, base.SourceID)
	}
}

func TestNewBase_RejectsBlankName(t *testing.T) {
	tx := schema.OpenTestTx(t)
	recovered := testkit.MustPanic(t, func() {
		_, _ = NewBase(context.Background(), tx, "   ", t.TempDir(), nil)
	})
	msg, ok := recovered.(string)
	if !ok || !strings.Contains(msg, "required") {
		t.Fatalf("panic = %v, want the missing-name message", recovered)
	}
}
