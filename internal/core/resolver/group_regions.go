package resolver

import (
	"context"
	"database/sql"

	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

// memberKey identifies one (group, member) slot
type memberKey struct {
	groupID, member int64
}

// tripleKey identifies one (group, member, region) reached through any alias
type tripleKey struct {
	groupID, member, regionID int64
}

// tripleScore accumulates the raw scoring inputs for one triple before the
// best-per-member reduction
type tripleScore struct {
	multigene   bool
	implication int64
	quality     float64
}

// memberAgg holds the best-per-member reduction values for one (group, member)
type memberAgg struct {
	multigene        bool
	implication      float64
	quality          float64
	countBasic       int64
	countImplication int64
	countQuality     int64
}

// regionConfidence is the final per-triple (specificity, implication, quality)
// confidence, each in [0, 100]
type regionConfidence struct {
	specificity, implication, quality int64
}

// ResolveGroupRegions rebuilds group_region from group_region_name: a
// multi-pass scoring algorithm assigning each named member of a group to
// zero, one, or many canonical regions. idx brackets the rebuild with an
// index drop/recreate on group_region, matching the source algorithm's own
// transactional shape independent of whatever table set the enclosing
// envelope already dropped indexes for
func ResolveGroupRegions(ctx context.Context, idx store.Indexer, q repokit.Queryer) error {
	if err := idx.DropIndexes(ctx, q, "group_region"); err != nil {
		return perr.FromSQLitef(err, "drop group_region indexes")
	}
	defer func() { _ = idx.CreateIndexes(ctx, q, "group_region") }()

	if _, err := q.Exec(ctx, "DELETE FROM group_region"); err != nil {
		return perr.FromSQLitef(err, "clear group_region")
	}

	aliasRegionCount, err := loadAliasRegionCounts(ctx, q)
	if err != nil {
		return err
	}

	triples, unmatchedMembers, err := loadTriples(ctx, q, aliasRegionCount)
	if err != nil {
		return err
	}

	members := aggregateMembers(triples)
	confidences := scoreTriples(triples, members)
	collapsed := collapseToGroupLevel(confidences)

	if err := insertGroupRegions(ctx, q, collapsed); err != nil {
		return err
	}
	if err := insertUnmatchedPlaceholders(ctx, q, unmatchedMembers); err != nil {
		return err
	}
	return idx.CreateIndexes(ctx, q, "group_region")
}

// loadAliasRegionCounts returns, for every (namespace_id, name) alias that
// appears anywhere in region_name, how many distinct regions it matches
func loadAliasRegionCounts(ctx context.Context, q repokit.Queryer) (map[[2]any]int64, error) {
	type aliasCount struct {
		ns    int64
		name  string
		count int64
	}
	counts, err := store.Many(ctx, q, func(r repokit.Row) (aliasCount, error) {
		var a aliasCount
		err := r.Scan(&a.ns, &a.name, &a.count)
		return a, err
	}, "SELECT namespace_id, name, COUNT(DISTINCT region_id) FROM region_name GROUP BY namespace_id, name")
	if err != nil {
		return nil, perr.FromSQLitef(err, "load alias region counts")
	}

	out := make(map[[2]any]int64, len(counts))
	for _, a := range counts {
		out[[2]any{a.ns, a.name}] = a.count
	}
	return out, nil
}

// loadTriples joins every group_region_name claim against region_name and
// returns the raw per-triple scores plus a count, per group_id, of members
// whose aliases matched zero regions at all
func loadTriples(ctx context.Context, q repokit.Queryer, aliasRegionCount map[[2]any]int64) (map[tripleKey]*tripleScore, map[int64]int64, error) {
	rows, err := q.Query(ctx, `
		SELECT grn.group_id, grn.member, grn.namespace_id, grn.name, ns.multigene, rn.region_id
		FROM group_region_name grn
		JOIN namespace ns ON ns.id = grn.namespace_id
		LEFT JOIN region_name rn ON rn.namespace_id = grn.namespace_id AND rn.name = grn.name
	`)
	if err != nil {
		return nil, nil, perr.FromSQLitef(err, "load group_region_name claims")
	}
	defer rows.Close()

	triples := make(map[tripleKey]*tripleScore)
	memberHit := make(map[memberKey]bool)
	memberGroup := make(map[memberKey]int64)

	for rows.Next() {
		var groupID, member, nsID int64
		var name string
		var multigeneFlag int64
		var regionID sql.NullInt64
		if err := rows.Scan(&groupID, &member, &nsID, &name, &multigeneFlag, &regionID); err != nil {
			return nil, nil, perr.FromSQLitef(err, "scan group_region_name claim")
		}

		mk := memberKey{groupID, member}
		memberGroup[mk] = groupID
		if !regionID.Valid {
			if _, ok := memberHit[mk]; !ok {
				memberHit[mk] = false
			}
			continue
		}
		memberHit[mk] = true

		count := aliasRegionCount[[2]any{nsID, name}]
		if count <= 0 {
			count = 1
		}

		tk := tripleKey{groupID, member, regionID.Int64}
		t, ok := triples[tk]
		if !ok {
			t = &tripleScore{}
			triples[tk] = t
		}
		if multigeneFlag != 0 {
			t.multigene = true
		}
		t.implication++
		t.quality += 1000.0 / float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, perr.FromSQLitef(err, "iterate group_region_name claims")
	}

	unmatchedByGroup := make(map[int64]int64)
	for mk, hit := range memberHit {
		if !hit {
			unmatchedByGroup[memberGroup[mk]]++
		}
	}
	return triples, unmatchedByGroup, nil
}

// aggregateMembers computes the best-per-member reduction: maxima across a
// member's triples, plus tie counts at each maximum
func aggregateMembers(triples map[tripleKey]*tripleScore) map[memberKey]*memberAgg {
	byMember := make(map[memberKey][]*tripleScore)
	regionsSeen := make(map[memberKey]map[int64]struct{})
	for tk, t := range triples {
		mk := memberKey{tk.groupID, tk.member}
		byMember[mk] = append(byMember[mk], t)
		if regionsSeen[mk] == nil {
			regionsSeen[mk] = make(map[int64]struct{})
		}
		regionsSeen[mk][tk.regionID] = struct{}{}
	}

	out := make(map[memberKey]*memberAgg, len(byMember))
	for mk, ts := range byMember {
		agg := &memberAgg{countBasic: int64(len(regionsSeen[mk]))}
		for _, t := range ts {
			if t.multigene {
				agg.multigene = true
			}
			if float64(t.implication) > agg.implication {
				agg.implication = float64(t.implication)
			}
			if t.quality > agg.quality {
				agg.quality = t.quality
			}
		}
		for _, t := range ts {
			if float64(t.implication) == agg.implication {
				agg.countImplication++
			}
			if t.quality == agg.quality {
				agg.countQuality++
			}
		}
		out[mk] = agg
	}
	return out
}

// scoreTriples computes the final per-triple (specificity, implication,
// quality) confidences: multigene aliases win outright, triples shadowed by
// a multigene sibling collapse to 1, and everything else splits 100 across
// the ties at each level
func scoreTriples(triples map[tripleKey]*tripleScore, members map[memberKey]*memberAgg) map[tripleKey]regionConfidence {
	out := make(map[tripleKey]regionConfidence, len(triples))
	for tk, t := range triples {
		mk := memberKey{tk.groupID, tk.member}
		m := members[mk]

		var c regionConfidence
		switch {
		case t.multigene:
			c = regionConfidence{100, 100, 100}
		case m.multigene:
			c = regionConfidence{1, 1, 1}
		default:
			c.specificity = div100(m.countBasic)
			if float64(t.implication) == m.implication {
				c.implication = div100(m.countImplication)
			}
			if t.quality == m.quality {
				c.quality = div100(m.countQuality)
			}
		}
		out[tk] = c
	}
	return out
}

func div100(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return 100 / n
}

// collapseToGroupLevel groups by (group_id, region_id) and takes the
// elementwise maximum of each confidence across every member that reached it
func collapseToGroupLevel(confidences map[tripleKey]regionConfidence) map[[2]int64]regionConfidence {
	out := make(map[[2]int64]regionConfidence)
	for tk, c := range confidences {
		key := [2]int64{tk.groupID, tk.regionID}
		cur, ok := out[key]
		if !ok {
			out[key] = c
			continue
		}
		out[key] = regionConfidence{
			specificity: maxI64(cur.specificity, c.specificity),
			implication: maxI64(cur.implication, c.implication),
			quality:     maxI64(cur.quality, c.quality),
		}
	}
	return out
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func insertGroupRegions(ctx context.Context, q repokit.Queryer, rows map[[2]int64]regionConfidence) error {
	for key, c := range rows {
		if _, err := q.Exec(ctx,
			"INSERT OR IGNORE INTO group_region(group_id, region_id, specificity, implication, quality) VALUES (?, ?, ?, ?, ?)",
			key[0], key[1], c.specificity, c.implication, c.quality,
		); err != nil {
			return perr.FromSQLitef(err, "insert group_region")
		}
	}
	return nil
}

// insertUnmatchedPlaceholders emits, per group, one row (group_id, 0, 100k,
// 100k, 100k) where k is the number of members whose aliases matched no
// region at all
func insertUnmatchedPlaceholders(ctx context.Context, q repokit.Queryer, unmatchedByGroup map[int64]int64) error {
	for groupID, k := range unmatchedByGroup {
		if k <= 0 {
			continue
		}
		v := 100 * k
		if _, err := q.Exec(ctx,
			"INSERT OR IGNORE INTO group_region(group_id, region_id, specificity, implication, quality) VALUES (?, 0, ?, ?, ?)",
			groupID, v, v, v,
		); err != nil {
			return perr.FromSQLitef(err, "insert unmatched member placeholder")
		}
	}
	return nil
}
