// Package envelope implements the bulk-update transactional envelope:
// begin a transaction, drop secondary indexes on the tables an adapter is
// about to touch, run the adapter body, then on success rebuild those
// indexes, fire the derived-table rebuilders the touched tables imply, and
// commit. On failure the indexes are still restored before the rollback
// propagates
package envelope

import (
	"context"

	"biokb/internal/core/resolver"
	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

// Table is one of the tables whose secondary indexes the envelope may drop
// for the duration of a bulk load
type Table string

const (
	TableGroup       Table = "group_"
	TableGroupName   Table = "group_name"
	TableGroupGroup  Table = "group_group"
	TableGroupRegion Table = "group_region"
	TableRegion      Table = "region"
	TableRegionName  Table = "region_name"
	TableRegionBound Table = "region_bound"
	TableSNP         Table = "snp"
	TableSNPMerge    Table = "snp_merge"
	TableSNPRole     Table = "snp_role"
)

// Flags is the set of affected table flags the caller declares on acquisition
type Flags map[Table]bool

// NewFlags builds a Flags set from the given tables
func NewFlags(tables ...Table) Flags {
	f := make(Flags, len(tables))
	for _, t := range tables {
		f[t] = true
	}
	return f
}

// Run opens the envelope: begins a transaction, drops indexes for every
// flagged table, runs body, and on success restores indexes, fires the
// post-hooks the touched tables imply, and commits. On error from body (or
// from a post-hook) indexes are still restored before the transaction rolls
// back
func Run(ctx context.Context, tx repokit.TxRunner, flags Flags, body func(ctx context.Context, q repokit.Queryer) error) error {
	idx, ok := tx.(store.Indexer)
	if !ok {
		return perr.Internalf("envelope: backend does not support index drop/recreate")
	}

	return repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
		dropped := make([]Table, 0, len(flags))
		for t := range flags {
			if err := idx.DropIndexes(ctx, q, string(t)); err != nil {
				restoreIndexes(ctx, idx, q, dropped)
				return perr.FromSQLitef(err, "drop indexes for %s", t)
			}
			dropped = append(dropped, t)
		}

		bodyErr := body(ctx, q)

		restoreIndexes(ctx, idx, q, dropped)
		if bodyErr != nil {
			return bodyErr
		}

		return repokit.RunMidHooks(ctx, q, postHooks(idx, flags)...)
	})
}

// restoreIndexes recreates every already-dropped table's indexes, continuing
// past individual failures. Errors from CreateIndexes are discarded on both
// the error and the success path; they never reach the envelope's return value
func restoreIndexes(ctx context.Context, idx store.Indexer, q repokit.Queryer, dropped []Table) {
	for _, t := range dropped {
		_ = idx.CreateIndexes(ctx, q, string(t))
	}
}

// postHooks selects, in order, updateRegionZones (if region_bound was
// affected), resolveSNPRoles (if region_name or snp_role was affected), and
// resolveGroupRegions (if region_name or group_region was affected)
func postHooks(idx store.Indexer, flags Flags) []repokit.MidHook {
	var hooks []repokit.MidHook
	if flags[TableRegionBound] {
		hooks = append(hooks, resolver.UpdateRegionZones)
	}
	if flags[TableRegionName] || flags[TableSNPRole] {
		hooks = append(hooks, resolver.ResolveSNPRoles)
	}
	if flags[TableRegionName] || flags[TableGroupRegion] {
		hooks = append(hooks, func(ctx context.Context, q repokit.Queryer) error {
			return resolver.ResolveGroupRegions(ctx, idx, q)
		})
	}
	return hooks
}
