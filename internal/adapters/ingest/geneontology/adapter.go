// Package geneontology is a source adapter for the Gene Ontology: it
// downloads the OBO term file and stages each term as a group with its
// symbol/synonym aliases and its "is_a" parent edges
package geneontology

import (
	"context"
	"io"
	"strings"
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
	sourceName   = "go"
	remoteHost   = "https://purl.obolibrary.org"
	remotePath   = "/obo/go/go-basic.obo"
	localFile    = "go-basic.obo"
	namespaceGO  = "go_id"
	namespaceSym = "symbol"
	typeName     = "go_term"
	relIsA       = "is_a"
)

// Adapter ingests GO terms from the OBO term file
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
	return &Adapter{Base: base, db: deps.DB, fetch: transport.NewHTTPFetcher(2 * time.Minute)}, nil
}

// Download conditionally fetches go-basic.obo into the working directory
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

// stanza is one parsed [Term] block from the OBO file
type stanza struct {
	id       string
	name     string
	synonyms []string
	isA      []string
}

// Update parses go-basic.obo and stages each term as a group
func (a *Adapter) Update(ctx context.Context) error {
	flags := envelope.NewFlags(
		envelope.TableGroup, envelope.TableGroupName, envelope.TableGroupGroup,
	)
	return envelope.Run(ctx, a.db, flags, func(ctx context.Context, q repokit.Queryer) error {
		if err := a.DeleteSourceData(ctx, q); err != nil {
			return err
		}

		nsGO, err := vocab.New().AddNamespace(ctx, q, namespaceGO, false)
		if err != nil {
			return err
		}
		nsSym, err := vocab.New().AddNamespace(ctx, q, namespaceSym, false)
		if err != nil {
			return err
		}
		typeID, err := vocab.New().AddType(ctx, q, typeName)
		if err != nil {
			return err
		}
		relID, err := vocab.New().AddRelationship(ctx, q, relIsA)
		if err != nil {
			return err
		}

		lr, err := streamutil.Open(a.WorkDir+"/"+localFile, 0)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "open %s", localFile)
		}
		defer lr.Close()

		idToGroup := make(map[string]int64)
		var pending []stanza

		for {
			st, ok, err := nextStanza(lr)
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "parse %s", localFile)
			}
			if !ok {
				break
			}
			if st.id == "" {
				continue
			}

			groupID, err := a.Staging.AddGroup(ctx, q, typeID, st.name, "")
			if err != nil {
				return err
			}
			idToGroup[st.id] = groupID

			if err := a.Staging.AddGroupName(ctx, q, groupID, nsGO, st.id); err != nil {
				return err
			}
			for _, syn := range st.synonyms {
				if err := a.Staging.AddGroupName(ctx, q, groupID, nsSym, syn); err != nil {
					return err
				}
			}
			pending = append(pending, st)
		}

		for _, st := range pending {
			childID := idToGroup[st.id]
			for _, parentTermID := range st.isA {
				parentID, ok := idToGroup[parentTermID]
				if !ok {
					continue // parent term has no [Term] stanza with an id in this file
				}
				if err := a.Staging.AddGroupGroup(ctx, q, childID, parentID, relID); err != nil {
					return err
				}
			}
		}
		a.Log.Logf("staged %d terms", len(pending))
		return nil
	})
}

// nextStanza scans forward to the next [Term] block and parses its id,
// name, synonym, and is_a lines. Returns ok=false at end of file
func nextStanza(lr *streamutil.LineReader) (stanza, bool, error) {
	var st stanza
	inTerm := false
	for {
		line, err := lr.Next()
		if err == io.EOF {
			if inTerm {
				return st, true, nil
			}
			return stanza{}, false, nil
		}
		if err != nil {
			return stanza{}, false, err
		}
		text := strings.TrimSpace(string(line))

		switch {
		case text == "[Term]":
			if inTerm {
				return st, true, nil
			}
			inTerm = true
			st = stanza{}
		case !inTerm:
			continue
		case text == "" || strings.HasPrefix(text, "["):
			return st, true, nil
		case strings.HasPrefix(text, "id: "):
			st.id = strings.TrimPrefix(text, "id: ")
		case strings.HasPrefix(text, "name: "):
			st.name = strings.TrimPrefix(text, "name: ")
		case strings.HasPrefix(text, "synonym: "):
			if syn := extractQuoted(text); syn != "" {
				st.synonyms = append(st.synonyms, syn)
			}
		case strings.HasPrefix(text, "is_a: "):
			rest := strings.TrimPrefix(text, "is_a: ")
			fields := streamutil.Split(rest, ' ', nil, 2, false)
			if len(fields) > 0 {
				st.isA = append(st.isA, fields[0])
			}
		}
	}
}

// extractQuoted pulls the "..." portion out of an OBO synonym line
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}
