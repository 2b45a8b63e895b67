package resolver

import (
	"context"
	"testing"

	"biokb/internal/core/schema"
	"biokb/internal/core/staging"
	"biokb/internal/core/vocab"
	"biokb/internal/platform/store"
)

func TestUpdateRegionZones_SpansExpectedZones(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	popID, _ := v.AddPopulation(ctx, q, "hg19", vocab.PopulationInfo{})
	s := staging.New(srcID)
	regionID, err := s.AddRegion(ctx, q, typeID, "r1", "")
	if err != nil {
		t.Fatalf("add region: %v", err)
	}
	if err := s.AddRegionBound(ctx, q, regionID, popID, "1", 99000, 250000); err != nil {
		t.Fatalf("add bound: %v", err)
	}

	if err := UpdateRegionZones(ctx, q); err != nil {
		t.Fatalf("update region zones: %v", err)
	}

	rows, err := q.Query(ctx, "SELECT zone FROM region_zone WHERE region_id = ? ORDER BY zone", regionID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var zones []int64
	for rows.Next() {
		var z int64
		if err := rows.Scan(&z); err != nil {
			t.Fatalf("scan: %v", err)
		}
		zones = append(zones, z)
	}
	want := []int64{0, 1, 2}
	if len(zones) != len(want) {
		t.Fatalf("got zones %v, want %v", zones, want)
	}
	for i, z := range zones {
		if z != want[i] {
			t.Fatalf("got zones %v, want %v", zones, want)
		}
	}
}

func TestResolveSNPRoles_JoinsThroughEntrezNamespace(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	entrezNS, err := v.AddNamespace(ctx, q, "entrez_id", false)
	if err != nil {
		t.Fatalf("add namespace: %v", err)
	}
	roleID, err := v.AddRole(ctx, q, "missense", vocab.RoleInfo{})
	if err != nil {
		t.Fatalf("add role: %v", err)
	}

	s := staging.New(srcID)
	regionID, err := s.AddRegion(ctx, q, typeID, "BRCA1", "")
	if err != nil {
		t.Fatalf("add region: %v", err)
	}
	if err := s.AddRegionName(ctx, q, regionID, entrezNS, "672"); err != nil {
		t.Fatalf("add region name: %v", err)
	}
	if err := s.AddSNPRoleEntrez(ctx, q, 123, "672", roleID); err != nil {
		t.Fatalf("add snp_role_entrez: %v", err)
	}
	// unmapped entrez id: should be silently dropped
	if err := s.AddSNPRoleEntrez(ctx, q, 456, "999999", roleID); err != nil {
		t.Fatalf("add unmapped snp_role_entrez: %v", err)
	}

	if err := ResolveSNPRoles(ctx, q); err != nil {
		t.Fatalf("resolve snp roles: %v", err)
	}

	var count int
	row := q.QueryRow(ctx, "SELECT COUNT(*) FROM snp_role")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d snp_role rows, want 1", count)
	}

	var rs, rID, rl int64
	row = q.QueryRow(ctx, "SELECT rs, region_id, role_id FROM snp_role")
	if err := row.Scan(&rs, &rID, &rl); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if rs != 123 || rID != regionID || rl != roleID {
		t.Fatalf("got (%d,%d,%d), want (123,%d,%d)", rs, rID, rl, regionID, roleID)
	}
}

func TestResolveGroupRegions_CleanSingleMapping(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	hgnc, err := v.AddNamespace(ctx, q, "hgnc", false)
	if err != nil {
		t.Fatalf("add namespace: %v", err)
	}

	s := staging.New(srcID)
	gID, err := s.AddGroup(ctx, q, typeID, "g1", "")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	rID, err := s.AddRegion(ctx, q, typeID, "BRCA1", "")
	if err != nil {
		t.Fatalf("add region: %v", err)
	}
	if err := s.AddRegionName(ctx, q, rID, hgnc, "brca1"); err != nil {
		t.Fatalf("add region name: %v", err)
	}
	if err := s.AddGroupRegionName(ctx, q, gID, 0, hgnc, "brca1"); err != nil {
		t.Fatalf("add group region name: %v", err)
	}

	idx := q.(store.Indexer)
	if err := ResolveGroupRegions(ctx, idx, q); err != nil {
		t.Fatalf("resolve group regions: %v", err)
	}

	var specificity, implication, quality int64
	row := q.QueryRow(ctx, "SELECT specificity, implication, quality FROM group_region WHERE group_id = ? AND region_id = ?", gID, rID)
	if err := row.Scan(&specificity, &implication, &quality); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if specificity != 100 || implication != 100 || quality != 100 {
		t.Fatalf("got (%d,%d,%d), want (100,100,100)", specificity, implication, quality)
	}
}

func TestResolveGroupRegions_AmbiguousAliasSpreadsConfidence(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	hgnc, err := v.AddNamespace(ctx, q, "hgnc", false)
	if err != nil {
		t.Fatalf("add namespace: %v", err)
	}

	s := staging.New(srcID)
	gID, _ := s.AddGroup(ctx, q, typeID, "g1", "")
	var regionIDs []int64
	for i := 0; i < 5; i++ {
		rID, err := s.AddRegion(ctx, q, typeID, "ambiguous", "")
		if err != nil {
			t.Fatalf("add region: %v", err)
		}
		if err := s.AddRegionName(ctx, q, rID, hgnc, "ambiguous"); err != nil {
			t.Fatalf("add region name: %v", err)
		}
		regionIDs = append(regionIDs, rID)
	}
	if err := s.AddGroupRegionName(ctx, q, gID, 0, hgnc, "ambiguous"); err != nil {
		t.Fatalf("add group region name: %v", err)
	}

	idx := q.(store.Indexer)
	if err := ResolveGroupRegions(ctx, idx, q); err != nil {
		t.Fatalf("resolve group regions: %v", err)
	}

	for _, rID := range regionIDs {
		var specificity, implication, quality int64
		row := q.QueryRow(ctx, "SELECT specificity, implication, quality FROM group_region WHERE group_id = ? AND region_id = ?", gID, rID)
		if err := row.Scan(&specificity, &implication, &quality); err != nil {
			t.Fatalf("scan region %d: %v", rID, err)
		}
		if specificity != 20 || implication != 20 || quality != 20 {
			t.Fatalf("region %d: got (%d,%d,%d), want (20,20,20)", rID, specificity, implication, quality)
		}
	}
}

func TestResolveGroupRegions_MultigeneAliasAllGetFullConfidence(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	uniprot, err := v.AddNamespace(ctx, q, "uniprot_id", true)
	if err != nil {
		t.Fatalf("add namespace: %v", err)
	}

	s := staging.New(srcID)
	gID, _ := s.AddGroup(ctx, q, typeID, "g1", "")
	var regionIDs []int64
	for i := 0; i < 3; i++ {
		rID, err := s.AddRegion(ctx, q, typeID, "multi", "")
		if err != nil {
			t.Fatalf("add region: %v", err)
		}
		if err := s.AddRegionName(ctx, q, rID, uniprot, "p12345"); err != nil {
			t.Fatalf("add region name: %v", err)
		}
		regionIDs = append(regionIDs, rID)
	}
	if err := s.AddGroupRegionName(ctx, q, gID, 0, uniprot, "p12345"); err != nil {
		t.Fatalf("add group region name: %v", err)
	}

	idx := q.(store.Indexer)
	if err := ResolveGroupRegions(ctx, idx, q); err != nil {
		t.Fatalf("resolve group regions: %v", err)
	}

	for _, rID := range regionIDs {
		var specificity, implication, quality int64
		row := q.QueryRow(ctx, "SELECT specificity, implication, quality FROM group_region WHERE group_id = ? AND region_id = ?", gID, rID)
		if err := row.Scan(&specificity, &implication, &quality); err != nil {
			t.Fatalf("scan region %d: %v", rID, err)
		}
		if specificity != 100 || implication != 100 || quality != 100 {
			t.Fatalf("region %d: got (%d,%d,%d), want (100,100,100)", rID, specificity, implication, quality)
		}
	}
}

func TestResolveGroupRegions_UnmatchedMemberEmitsPlaceholder(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	hgnc, err := v.AddNamespace(ctx, q, "hgnc", false)
	if err != nil {
		t.Fatalf("add namespace: %v", err)
	}

	s := staging.New(srcID)
	gID, _ := s.AddGroup(ctx, q, typeID, "g1", "")
	// two members, neither of which has any matching region_name row
	if err := s.AddGroupRegionName(ctx, q, gID, 0, hgnc, "nonexistent-one"); err != nil {
		t.Fatalf("add group region name: %v", err)
	}
	if err := s.AddGroupRegionName(ctx, q, gID, 1, hgnc, "nonexistent-two"); err != nil {
		t.Fatalf("add group region name: %v", err)
	}

	idx := q.(store.Indexer)
	if err := ResolveGroupRegions(ctx, idx, q); err != nil {
		t.Fatalf("resolve group regions: %v", err)
	}

	var specificity, implication, quality int64
	row := q.QueryRow(ctx, "SELECT specificity, implication, quality FROM group_region WHERE group_id = ? AND region_id = 0", gID)
	if err := row.Scan(&specificity, &implication, &quality); err != nil {
		t.Fatalf("scan placeholder: %v", err)
	}
	if specificity != 200 || implication != 200 || quality != 200 {
		t.Fatalf("got (%d,%d,%d), want (200,200,200) for k=2 unmatched members", specificity, implication, quality)
	}
}

func TestResolveGroupRegions_EmptyGroupProducesNoOutput(t *testing.T) {
	q := schema.OpenTest(t)
	ctx := context.Background()
	v := vocab.New()

	srcID, _ := v.AddSource(ctx, q, "src")
	typeID, _ := v.AddType(ctx, q, "gene")
	s := staging.New(srcID)
	gID, _ := s.AddGroup(ctx, q, typeID, "empty-group", "")

	idx := q.(store.Indexer)
	if err := ResolveGroupRegions(ctx, idx, q); err != nil {
		t.Fatalf("resolve group regions: %v", err)
	}

	var count int
	row := q.QueryRow(ctx, "SELECT COUNT(*) FROM group_region WHERE group_id = ?", gID)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("got %d rows for a group with zero membership claims, want 0", count)
	}
}
