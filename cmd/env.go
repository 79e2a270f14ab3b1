package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/queencity-ops/leadgen-cli/internal/fetcher"
	"github.com/queencity-ops/leadgen-cli/internal/ingest"
	"github.com/queencity-ops/leadgen-cli/internal/pipeline"
	"github.com/queencity-ops/leadgen-cli/internal/scorer"
	"github.com/queencity-ops/leadgen-cli/internal/source"
	"github.com/queencity-ops/leadgen-cli/internal/store"
)

// pipelineEnv holds the initialized store, adapter registry, and pipeline
// shared by the scrape and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Registry *source.Registry
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEnv builds the full scrape environment. Facebook credentials may be
// nil; the adapter then sits out the run. Callers should defer env.Close().
func initEnv(ctx context.Context, creds *source.Credentials, autoScore bool) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	fetch := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	reg := source.NewRegistry()
	reg.Register(source.NewRedditSource(cfg.Sources.Reddit, fetch))
	reg.Register(source.NewClassifiedsSource(cfg.Sources.Classifieds, fetch))
	reg.Register(source.NewWebSearchSource(cfg.Sources.Search, fetch))
	reg.Register(source.NewFacebookSource(cfg.Sources.Facebook, creds))

	ing := ingest.New(st, cfg.Business)
	p := pipeline.New(reg, ing, st, pipeline.Options{
		AutoScore: autoScore,
		Rules:     scorer.DefaultRules(),
	})

	return &pipelineEnv{Store: st, Registry: reg, Pipeline: p}, nil
}
