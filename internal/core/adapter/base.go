package adapter

import (
	"context"

	"biokb/internal/core/staging"
	"biokb/internal/core/vocab"
	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
	pstrings "biokb/internal/platform/strings"
)

// Base is the shared state every concrete source adapter embeds: its
// source_id (materialized once via the vocabulary registry on construction),
// the staging primitives already bound to that source_id, and a log sink
type Base struct {
	NameStr  string
	WorkDir  string
	SourceID int64
	Staging  staging.Staging
	Log      *LogSink
}

// NewBase derives name's source_id (addSource is idempotent: re-running an
// adapter against the same handle reuses the same source_id) and returns a
// Base ready to embed in a concrete adapter
func NewBase(ctx context.Context, db repokit.TxRunner, name, workDir string, log *LogSink) (Base, error) {
	name = pstrings.MustString(name, "adapter name")

	var sourceID int64
	err := db.Tx(ctx, func(q repokit.Queryer) error {
		id, err := vocab.New().AddSource(ctx, q, name)
		if err != nil {
			return err
		}
		sourceID = id
		return nil
	})
	if err != nil {
		return Base{}, perr.Wrapf(err, perr.ErrorCodeDB, "materialize source_id for %s", name)
	}
	if log == nil {
		log = NewLogSink(nil)
	}
	return Base{
		NameStr:  name,
		WorkDir:  workDir,
		SourceID: sourceID,
		Staging:  staging.New(sourceID),
		Log:      log,
	}, nil
}

// Name implements the naming half of the adapter contract
func (b Base) Name() string { return b.NameStr }

// DeleteSourceData wipes every staging row this adapter previously wrote;
// every Update implementation must call this before staging fresh rows
func (b Base) DeleteSourceData(ctx context.Context, q repokit.Queryer) error {
	return b.Staging.DeleteSourceData(ctx, q)
}
