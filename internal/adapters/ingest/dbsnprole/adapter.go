// Package dbsnprole is a source adapter for dbSNP's Entrez-keyed SNP
// function table: it fetches the pipe-delimited file over FTP and stages it
// into snp_role_entrez, which ResolveSNPRoles later joins through
// region_name at the entrez_id namespace
package dbsnprole

import (
	"context"
	"io"
	"strconv"
	"time"

	"biokb/internal/core/adapter"
	"biokb/internal/core/envelope"
	"biokb/internal/core/streamutil"
	"biokb/internal/core/transport"
	"biokb/internal/core/vocab"
	"biokb/internal/modkit"
	"biokb/internal/modkit/repokit"
	perr "biokb/internal/platform/errors"
)

const (
	sourceName  = "dbsnp_role"
	remoteHost  = "ftp.ncbi.nlm.nih.gov:21"
	remotePath  = "/snp/organisms/human_9606/database/organism_data/b151_SNPContigLocusId_108.bcp.gz"
	localFile   = "SNPContigLocusId.bcp.gz"
	defaultRole = "unknown"
)

// column offsets within the pipe-delimited row
const (
	colRS     = 0
	colEntrez = 1
	colFxn    = 2
	minCols   = 3
)

// fxnToRole maps the numeric function class dbSNP emits to a role name;
// unrecognized codes fall back to defaultRole rather than failing the row
var fxnToRole = map[string]string{
	"3": "coding-synonymous",
	"8": "coding-nonsynonymous",
	"1": "intron",
	"2": "utr",
}

// Adapter ingests Entrez-keyed SNP role claims
type Adapter struct {
	adapter.Base
	db    repokit.TxRunner
	fetch transport.Fetcher
}

// New builds the adapter from the shared deps, materializing its source_id
// against deps.DB
func New(ctx context.Context, deps modkit.Deps, opts ...modkit.Option) (*Adapter, error) {
	cfg := modkit.Build(opts...)
	if cfg.Name == "" {
		cfg.Name = sourceName
	}
	base, err := adapter.NewBase(ctx, deps.DB, cfg.Name, cfg.WorkDir, adapter.NewLogSink(&deps.Log))
	if err != nil {
		return nil, err
	}
	return &Adapter{Base: base, db: deps.DB, fetch: transport.NewFTPFetcher(30 * time.Second)}, nil
}

// Download conditionally fetches the SNP-to-Entrez function table
func (a *Adapter) Download(ctx context.Context) error {
	a.Log.LogPush("downloading " + sourceName)
	defer a.Log.LogPop("")

	files := transport.FileSet{localFile: remotePath}
	results, err := a.fetch.Fetch(ctx, remoteHost, files, a.WorkDir)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "fetch %s", sourceName)
	}
	r := results[localFile]
	if r.Err != nil {
		return perr.Wrapf(r.Err, perr.ErrorCodeUnavailable, "fetch %s", localFile)
	}
	if r.Skipped {
		a.Log.Log("up to date, skipping")
	} else {
		a.Log.Log("downloaded")
	}
	return nil
}

// Update parses the function table and stages snp_role_entrez rows
func (a *Adapter) Update(ctx context.Context) error {
	flags := envelope.NewFlags(envelope.TableSNPRole)
	return envelope.Run(ctx, a.db, flags, func(ctx context.Context, q repokit.Queryer) error {
		if err := a.DeleteSourceData(ctx, q); err != nil {
			return err
		}

		roleIDs := make(map[string]int64)
		for _, name := range fxnToRole {
			id, err := vocab.New().AddRole(ctx, q, name, vocab.RoleInfo{})
			if err != nil {
				return err
			}
			roleIDs[name] = id
		}
		unknownID, err := vocab.New().AddRole(ctx, q, defaultRole, vocab.RoleInfo{})
		if err != nil {
			return err
		}

		lr, err := streamutil.Open(a.WorkDir+"/"+localFile, 0)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "open %s", localFile)
		}
		defer lr.Close()

		n := 0
		for {
			line, err := lr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "read %s", localFile)
			}
			fields := streamutil.Split(string(line), '|', nil, 0, false)
			if len(fields) < minCols {
				continue
			}
			rs, err := strconv.ParseInt(fields[colRS], 10, 64)
			if err != nil {
				continue // malformed row, skip; the table is total-reconstruction so a bad line costs nothing downstream
			}
			entrez := fields[colEntrez]
			roleID := unknownID
			if name, ok := fxnToRole[fields[colFxn]]; ok {
				roleID = roleIDs[name]
			}
			if err := a.Staging.AddSNPRoleEntrez(ctx, q, rs, entrez, roleID); err != nil {
				return err
			}
			n++
		}
		a.Log.Logf("staged %d snp role claims", n)
		return nil
	})
}
