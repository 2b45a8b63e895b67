// Command biokb-ingestcore drives the biomedical ingestion core: it wires
// the registered source adapters to a SQLite-backed knowledge-base store and
// either runs them once (-once) or serves the operator HTTP surface so a
// sweep can be triggered on demand
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"biokb/internal/adapters/ingest/dbsnprole"
	"biokb/internal/adapters/ingest/geneontology"
	"biokb/internal/core/adapter"
	"biokb/internal/core/schema"
	"biokb/internal/modkit"
	"biokb/internal/modkit/repokit"
	"biokb/internal/ops"
	"biokb/internal/platform/config"
	"biokb/internal/platform/logger"
	"biokb/internal/platform/store"
)

func main() {
	root := config.New()
	dbCfg := root.Prefix("INGESTCORE_SQLITE_")
	opsCfg := root.Prefix("INGESTCORE_OPS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		SQLite: store.SQLiteConfig{
			Path:        dbCfg.MayString("PATH", "./knowledgebase.db"),
			BusyTimeout: dbCfg.MayDuration("BUSY_TIMEOUT", 5*time.Second),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() { _ = st.Close(ctx) }()
	repokit.MustGuard(ctx, st)

	if err := schema.Apply(ctx, st.DB); err != nil {
		l.Fatal().Err(err).Msg("schema.Apply failed")
	}

	workDir := dbCfg.MayString("WORKDIR", "./ingest-work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		l.Fatal().Err(err).Msg("mkdir workdir failed")
	}

	deps := modkit.Deps{Log: *logger.Named("ingest"), Cfg: root, DB: st.DB}
	reg := adapter.NewRegistry()

	goAdapter, err := geneontology.New(ctx, deps, modkit.WithWorkDir(workDir))
	if err != nil {
		l.Fatal().Err(err).Msg("build geneontology adapter failed")
	}
	reg.AddAdapter(goAdapter)

	snpAdapter, err := dbsnprole.New(ctx, deps, modkit.WithWorkDir(workDir))
	if err != nil {
		l.Fatal().Err(err).Msg("build dbsnprole adapter failed")
	}
	reg.AddAdapter(snpAdapter)

	once := flag.Bool("once", false, "run every registered adapter once and exit")
	flag.Parse()

	if *once {
		runID := uuid.NewString()
		sweepCtx := store.WithRunID(logger.WithRun(ctx, runID, ""), runID)
		results, err := reg.RunAll(sweepCtx)
		for _, r := range results {
			ev := l.Info()
			if !r.Ok {
				ev = l.Error().Err(r.Err)
			}
			ev.Str("adapter", r.Name).Bool("ok", r.Ok).Msg("adapter run finished")
		}
		if err != nil {
			l.Fatal().Err(err).Msg("adapter sweep aborted on storage error")
		}
		return
	}

	srv := ops.New(ops.NewRunner(reg))
	addr := opsCfg.MayString("ADDR", ":8080")
	httpSrv := &http.Server{Addr: addr, Handler: srv.Router()}

	go func() {
		l.Info().Str("addr", addr).Msg("ops server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("ops server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
