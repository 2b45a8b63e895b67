// Package resolver rebuilds the derived tables: the region-zone
// spatial index, the SNP-role join, and the fuzzy name-to-region
// membership resolver. Every operation here is a total reconstruction:
// it deletes its output table and regenerates it from the current staging
// tables inside the enclosing envelope's transaction
package resolver

import (
	"context"
	"database/sql"
	"errors"

	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

// ZoneSize is the fixed window (bp) used to spatially index region bounds
const ZoneSize = 100000

// UpdateRegionZones rebuilds region_zone from region_bound: every integer
// zone z such that posMin/Z <= z <= posMax/Z
func UpdateRegionZones(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, "DELETE FROM region_zone"); err != nil {
		return perr.FromSQLitef(err, "clear region_zone")
	}

	type bound struct {
		regionID, populationID int64
		chr                    string
		posMin, posMax         int64
	}
	bounds, err := store.Many(ctx, q, func(r repokit.Row) (bound, error) {
		var b bound
		err := r.Scan(&b.regionID, &b.populationID, &b.chr, &b.posMin, &b.posMax)
		return b, err
	}, "SELECT region_id, population_id, chr, posMin, posMax FROM region_bound")
	if err != nil {
		return perr.FromSQLitef(err, "scan region_bound")
	}

	for _, b := range bounds {
		zMin := b.posMin / ZoneSize
		zMax := b.posMax / ZoneSize
		for z := zMin; z <= zMax; z++ {
			if _, err := q.Exec(ctx,
				"INSERT OR IGNORE INTO region_zone(region_id, population_id, chr, zone) VALUES (?, ?, ?, ?)",
				b.regionID, b.populationID, b.chr, z,
			); err != nil {
				return perr.FromSQLitef(err, "insert region_zone")
			}
		}
	}
	return nil
}

// ResolveSNPRoles rebuilds snp_role by joining snp_role_entrez to
// region_name through the entrez_id namespace. Missing region mappings are
// silently dropped; they may resolve after a later source import
func ResolveSNPRoles(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, "DELETE FROM snp_role"); err != nil {
		return perr.FromSQLitef(err, "clear snp_role")
	}

	entrezNS, err := store.Scalar[int64](ctx, q, "SELECT id FROM namespace WHERE name = 'entrez_id'")
	if errors.Is(err, sql.ErrNoRows) {
		// no entrez_id namespace has been registered yet: nothing to join
		return nil
	}
	if err != nil {
		return perr.FromSQLitef(err, "lookup entrez_id namespace")
	}

	_, err = q.Exec(ctx, `
		INSERT OR IGNORE INTO snp_role(rs, region_id, role_id)
		SELECT sre.rs, rn.region_id, sre.role_id
		FROM snp_role_entrez sre
		JOIN region_name rn ON rn.namespace_id = ? AND rn.name = sre.region_entrez
	`, entrezNS)
	if err != nil {
		return perr.FromSQLitef(err, "insert snp_role")
	}
	return nil
}
