// Package staging implements the bulk staging primitives: groups,
// regions, names, bounds, SNPs, merges, and Entrez role claims. Every
// primitive is implicitly scoped to the source_id bound to the adapter
// instance that owns this Staging value
package staging

import (
	"context"

	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	"biokb/internal/platform/store"
)

// Staging binds the staging primitives to one adapter run's source_id
type Staging struct {
	SourceID int64
}

// New returns a Staging bound to sourceID
func New(sourceID int64) Staging { return Staging{SourceID: sourceID} }

// GroupInput is one row for AddGroups
type GroupInput struct {
	TypeID      int64
	Label       string
	Description string
}

// AddGroup inserts a new group row (duplicates allowed; the source owns
// dedup) and returns its id
func (s Staging) AddGroup(ctx context.Context, q repokit.Queryer, typeID int64, label, description string) (int64, error) {
	tag, err := q.Exec(ctx,
		"INSERT INTO group_(type_id, label, description, source_id) VALUES (?, ?, ?, ?)",
		typeID, label, description, s.SourceID)
	if err != nil {
		return 0, perr.FromSQLitef(err, "insert group")
	}
	return lastInsertID(ctx, q, tag)
}

// AddGroups is the bulk form of AddGroup, returning ids in input order
func (s Staging) AddGroups(ctx context.Context, q repokit.Queryer, rows []GroupInput) ([]int64, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		id, err := s.AddGroup(ctx, q, r.TypeID, r.Label, r.Description)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// AddGroupName records a group alias; silent-on-duplicate
func (s Staging) AddGroupName(ctx context.Context, q repokit.Queryer, groupID, namespaceID int64, name string) error {
	_, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO group_name(group_id, namespace_id, name, source_id) VALUES (?, ?, ?, ?)",
		groupID, namespaceID, name, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert group_name")
}

// GroupNameTriple is one row for the (group_id, namespace_id, name) bulk form
type GroupNameTriple struct {
	GroupID     int64
	NamespaceID int64
	Name        string
}

// AddGroupNames is the (group_id, namespace_id, name) triple bulk form
func (s Staging) AddGroupNames(ctx context.Context, q repokit.Queryer, rows []GroupNameTriple) error {
	for _, r := range rows {
		if err := s.AddGroupName(ctx, q, r.GroupID, r.NamespaceID, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// GroupNamePair is one row for the fixed-namespace (group_id, name) bulk form
type GroupNamePair struct {
	GroupID int64
	Name    string
}

// AddGroupNamesNS is the fixed-namespace (group_id, name) bulk form; maps to
// the same group_name table as AddGroupNames
func (s Staging) AddGroupNamesNS(ctx context.Context, q repokit.Queryer, namespaceID int64, rows []GroupNamePair) error {
	for _, r := range rows {
		if err := s.AddGroupName(ctx, q, r.GroupID, namespaceID, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// AddGroupGroup inserts a directed edge and its mirror with opposite
// direction, satisfying the "every positive edge has a mirror" invariant
func (s Staging) AddGroupGroup(ctx context.Context, q repokit.Queryer, groupID, relatedGroupID, relationshipID int64) error {
	if _, err := q.Exec(ctx,
		"INSERT INTO group_group(group_id, related_group_id, relationship_id, direction, source_id) VALUES (?, ?, ?, 1, ?)",
		groupID, relatedGroupID, relationshipID, s.SourceID,
	); err != nil {
		return perr.FromSQLitef(err, "insert group_group")
	}
	_, err := q.Exec(ctx,
		"INSERT INTO group_group(group_id, related_group_id, relationship_id, direction, source_id) VALUES (?, ?, ?, -1, ?)",
		relatedGroupID, groupID, relationshipID, s.SourceID,
	)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert group_group mirror")
}

// GroupGroupInput is one row for AddGroupGroups
type GroupGroupInput struct {
	GroupID        int64
	RelatedGroupID int64
	RelationshipID int64
}

// AddGroupGroups is the bulk form of AddGroupGroup
func (s Staging) AddGroupGroups(ctx context.Context, q repokit.Queryer, rows []GroupGroupInput) error {
	for _, r := range rows {
		if err := s.AddGroupGroup(ctx, q, r.GroupID, r.RelatedGroupID, r.RelationshipID); err != nil {
			return err
		}
	}
	return nil
}

// AddGroupRegionName records one unresolved membership claim: group g's
// member-th slot is known as name in namespace ns. Silent-on-duplicate
func (s Staging) AddGroupRegionName(ctx context.Context, q repokit.Queryer, groupID, member, namespaceID int64, name string) error {
	_, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO group_region_name(group_id, member, namespace_id, name, source_id) VALUES (?, ?, ?, ?, ?)",
		groupID, member, namespaceID, name, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert group_region_name")
}

// GroupRegionNameInput is one row for AddGroupRegionNames
type GroupRegionNameInput struct {
	GroupID     int64
	Member      int64
	NamespaceID int64
	Name        string
}

// AddGroupRegionNames is the bulk form of AddGroupRegionName
func (s Staging) AddGroupRegionNames(ctx context.Context, q repokit.Queryer, rows []GroupRegionNameInput) error {
	for _, r := range rows {
		if err := s.AddGroupRegionName(ctx, q, r.GroupID, r.Member, r.NamespaceID, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// AddGroupLiterals is a historical synonym for AddGroupRegionNames in the
// (group_id, member, namespace_id, name) shape (open question #3)
func (s Staging) AddGroupLiterals(ctx context.Context, q repokit.Queryer, rows []GroupRegionNameInput) error {
	return s.AddGroupRegionNames(ctx, q, rows)
}

// AddRegion inserts a new region row (duplicates allowed) and returns its id
func (s Staging) AddRegion(ctx context.Context, q repokit.Queryer, typeID int64, label, description string) (int64, error) {
	tag, err := q.Exec(ctx,
		"INSERT INTO region(type_id, label, description, source_id) VALUES (?, ?, ?, ?)",
		typeID, label, description, s.SourceID)
	if err != nil {
		return 0, perr.FromSQLitef(err, "insert region")
	}
	return lastInsertID(ctx, q, tag)
}

// RegionInput is one row for AddRegions
type RegionInput struct {
	TypeID      int64
	Label       string
	Description string
}

// AddRegions is the bulk form of AddRegion
func (s Staging) AddRegions(ctx context.Context, q repokit.Queryer, rows []RegionInput) ([]int64, error) {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		id, err := s.AddRegion(ctx, q, r.TypeID, r.Label, r.Description)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// AddRegionName records a region alias; silent-on-duplicate
func (s Staging) AddRegionName(ctx context.Context, q repokit.Queryer, regionID, namespaceID int64, name string) error {
	_, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO region_name(region_id, namespace_id, name, source_id) VALUES (?, ?, ?, ?)",
		regionID, namespaceID, name, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert region_name")
}

// RegionNameInput is one row for AddRegionNames
type RegionNameInput struct {
	RegionID    int64
	NamespaceID int64
	Name        string
}

// AddRegionNames is the bulk form of AddRegionName
func (s Staging) AddRegionNames(ctx context.Context, q repokit.Queryer, rows []RegionNameInput) error {
	for _, r := range rows {
		if err := s.AddRegionName(ctx, q, r.RegionID, r.NamespaceID, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// AddRegionBound inserts a half-open interval, canonicalizing
// (posMin, posMax) = (min(a,b), max(a,b)). Silent-on-duplicate
func (s Staging) AddRegionBound(ctx context.Context, q repokit.Queryer, regionID, populationID int64, chr string, a, b int64) error {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	_, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO region_bound(region_id, population_id, chr, posMin, posMax, source_id) VALUES (?, ?, ?, ?, ?, ?)",
		regionID, populationID, chr, lo, hi, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert region_bound")
}

// RegionBoundInput is one row for AddRegionBounds
type RegionBoundInput struct {
	RegionID     int64
	PopulationID int64
	Chr          string
	PosA, PosB   int64
}

// AddRegionBounds is the bulk form of AddRegionBound
func (s Staging) AddRegionBounds(ctx context.Context, q repokit.Queryer, rows []RegionBoundInput) error {
	for _, r := range rows {
		if err := s.AddRegionBound(ctx, q, r.RegionID, r.PopulationID, r.Chr, r.PosA, r.PosB); err != nil {
			return err
		}
	}
	return nil
}

// AddPopulationRegionBounds is the population-scoped bulk form: one fixed
// population applied across many region bounds
func (s Staging) AddPopulationRegionBounds(ctx context.Context, q repokit.Queryer, populationID int64, rows []RegionBoundInput) error {
	for _, r := range rows {
		if err := s.AddRegionBound(ctx, q, r.RegionID, populationID, r.Chr, r.PosA, r.PosB); err != nil {
			return err
		}
	}
	return nil
}

// AddSNP inserts a raw SNP row; duplicates allowed
func (s Staging) AddSNP(ctx context.Context, q repokit.Queryer, rs int64, chr string, pos int64) error {
	_, err := q.Exec(ctx,
		"INSERT INTO snp(rs, chr, pos, source_id) VALUES (?, ?, ?, ?)", rs, chr, pos, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert snp")
}

// SNPInput is one row for AddSNPs
type SNPInput struct {
	RS  int64
	Chr string
	Pos int64
}

// AddSNPs is the bulk form of AddSNP
func (s Staging) AddSNPs(ctx context.Context, q repokit.Queryer, rows []SNPInput) error {
	for _, r := range rows {
		if err := s.AddSNP(ctx, q, r.RS, r.Chr, r.Pos); err != nil {
			return err
		}
	}
	return nil
}

// AddSNPMerge records rsID history (old -> current); duplicates allowed
func (s Staging) AddSNPMerge(ctx context.Context, q repokit.Queryer, rsOld, rsNew, rsCur int64) error {
	_, err := q.Exec(ctx,
		"INSERT INTO snp_merge(rsOld, rsNew, rsCur, source_id) VALUES (?, ?, ?, ?)", rsOld, rsNew, rsCur, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert snp_merge")
}

// SNPMergeInput is one row for AddSNPMerges
type SNPMergeInput struct {
	RSOld, RSNew, RSCur int64
}

// AddSNPMerges is the bulk form of AddSNPMerge
func (s Staging) AddSNPMerges(ctx context.Context, q repokit.Queryer, rows []SNPMergeInput) error {
	for _, r := range rows {
		if err := s.AddSNPMerge(ctx, q, r.RSOld, r.RSNew, r.RSCur); err != nil {
			return err
		}
	}
	return nil
}

// AddSNPRoleEntrez records an Entrez-keyed role claim; silent-on-duplicate.
// resolveSNPRoles later joins this through region_name at the entrez_id
// namespace to produce snp_role
func (s Staging) AddSNPRoleEntrez(ctx context.Context, q repokit.Queryer, rs int64, regionEntrez string, roleID int64) error {
	_, err := q.Exec(ctx,
		"INSERT OR IGNORE INTO snp_role_entrez(rs, region_entrez, role_id, source_id) VALUES (?, ?, ?, ?)",
		rs, regionEntrez, roleID, s.SourceID)
	return perr.WrapIf(err, perr.ErrorCodeDB, "insert snp_role_entrez")
}

// SNPRoleEntrezInput is one row for AddSNPRoleEntrezs
type SNPRoleEntrezInput struct {
	RS           int64
	RegionEntrez string
	RoleID       int64
}

// AddSNPRoleEntrezs is the bulk form of AddSNPRoleEntrez
func (s Staging) AddSNPRoleEntrezs(ctx context.Context, q repokit.Queryer, rows []SNPRoleEntrezInput) error {
	for _, r := range rows {
		if err := s.AddSNPRoleEntrez(ctx, q, r.RS, r.RegionEntrez, r.RoleID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSourceData wipes every staging row owned by this source_id across
// every table an adapter can write to, ahead of a fresh update()
func (s Staging) DeleteSourceData(ctx context.Context, q repokit.Queryer) error {
	tables := []string{
		"group_region_name", "group_group", "group_name", "group_",
		"region_bound", "region_name", "region",
		"snp_role_entrez", "snp_merge", "snp",
	}
	for _, t := range tables {
		if _, err := q.Exec(ctx, "DELETE FROM "+t+" WHERE source_id = ?", s.SourceID); err != nil {
			return perr.FromSQLitef(err, "delete source data from %s", t)
		}
	}
	return nil
}

func lastInsertID(ctx context.Context, q repokit.Queryer, _ repokit.CommandTag) (int64, error) {
	id, err := store.Scalar[int64](ctx, q, "SELECT last_insert_rowid()")
	if err != nil {
		return 0, perr.FromSQLitef(err, "last_insert_rowid")
	}
	return id, nil
}
