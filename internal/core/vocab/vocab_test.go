package vocab

import (
	"context"
	"testing"

	"biokb/internal/core/schema"
)

func TestAddNamespace_IdempotentAcrossCase(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	r := New()

	id1, err := r.AddNamespace(ctx, q, "GO_ID", false)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	id2, err := r.AddNamespace(ctx, q, "go_id", false)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("got ids %d and %d, want equal", id1, id2)
	}

	var count int
	row := q.QueryRow(ctx, "SELECT COUNT(*) FROM namespace WHERE name = 'go_id'")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d rows, want 1", count)
	}
}

func TestAddType_BulkPreservesOrderAndDedups(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	r := New()

	ids, err := r.AddTypes(ctx, q, []string{"gene", "pathway", "gene"})
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}
	if ids[0] != ids[2] {
		t.Fatalf("repeated name should resolve to the same id: %v", ids)
	}
	if ids[0] == ids[1] {
		t.Fatalf("distinct names should resolve to distinct ids: %v", ids)
	}
}

func TestAddRole_PreservesDescriptionOnlyOnFirstInsert(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	r := New()

	coding := true
	id1, err := r.AddRole(ctx, q, "missense", RoleInfo{Description: "missense variant", Coding: &coding})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	id2, err := r.AddRole(ctx, q, "missense", RoleInfo{Description: "ignored on repeat"})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("got ids %d and %d, want equal", id1, id2)
	}

	var desc string
	row := q.QueryRow(ctx, "SELECT description FROM role WHERE id = ?", id1)
	if err := row.Scan(&desc); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if desc != "missense variant" {
		t.Fatalf("got description %q, want original to survive the second insert", desc)
	}
}

func TestAddNamespace_RejectsEmptyName(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	r := New()

	if _, err := r.AddNamespace(ctx, q, "   ", false); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestBulkForms_RolePopulationSource(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	r := New()

	roleIDs, err := r.AddRoles(ctx, q, []RoleInput{
		{Name: "Intron"},
		{Name: "intron"},
		{Name: "utr"},
	})
	if err != nil {
		t.Fatalf("add roles: %v", err)
	}
	if roleIDs[0] != roleIDs[1] || roleIDs[0] == roleIDs[2] {
		t.Fatalf("role ids not idempotent across case: %v", roleIDs)
	}

	popIDs, err := r.AddPopulations(ctx, q, []PopulationInput{
		{Name: "ceu", Info: PopulationInfo{Description: "hapmap ceu"}},
		{Name: "yri"},
	})
	if err != nil {
		t.Fatalf("add populations: %v", err)
	}
	if popIDs[0] == popIDs[1] {
		t.Fatalf("distinct populations share an id: %v", popIDs)
	}

	srcIDs, err := r.AddSources(ctx, q, []string{"go", "dbsnp_role", "GO"})
	if err != nil {
		t.Fatalf("add sources: %v", err)
	}
	if srcIDs[0] != srcIDs[2] || srcIDs[0] == srcIDs[1] {
		t.Fatalf("source bulk upsert mismatch: %v", srcIDs)
	}
}
