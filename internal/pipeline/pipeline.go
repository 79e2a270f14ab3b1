// Package pipeline orchestrates a scrape run: fan out across the selected
// source adapters, ingest what they find, and optionally score the new rows.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/queencity-ops/leadgen-cli/internal/ingest"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/scorer"
	"github.com/queencity-ops/leadgen-cli/internal/source"
	"github.com/queencity-ops/leadgen-cli/internal/store"
)

// Options tunes a Pipeline beyond its required collaborators.
type Options struct {
	// AutoScore runs a scoring pass over unscored leads after ingest.
	AutoScore bool
	// Rules is the rule set used when AutoScore is on.
	Rules scorer.Rules
}

// Pipeline runs the scrape-ingest-score sequence against a set of adapters.
type Pipeline struct {
	registry *source.Registry
	ingestor *ingest.Ingestor
	store    store.Store
	opts     Options
	log      *zap.Logger
}

// New assembles a Pipeline.
func New(registry *source.Registry, ingestor *ingest.Ingestor, st store.Store, opts Options) *Pipeline {
	return &Pipeline{
		registry: registry,
		ingestor: ingestor,
		store:    st,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "pipeline")),
	}
}

// Run executes one scrape across the named sources (all registered sources
// when names is empty) and returns the finished job record. Source failures
// are recorded on the job, never fatal: the run fails only when no adapter
// produced a usable result or the job record itself cannot be written.
func (p *Pipeline) Run(ctx context.Context, sourceNames []string) (*model.ScrapeJob, error) {
	sources, job, err := p.begin(ctx, sourceNames)
	if err != nil {
		return nil, err
	}
	if err := p.execute(ctx, job, sources); err != nil {
		return nil, err
	}
	return job, nil
}

// Start begins a run and returns as soon as the job record exists; the
// scrape continues in the background. Callers poll the job for progress.
func (p *Pipeline) Start(ctx context.Context, sourceNames []string) (*model.ScrapeJob, error) {
	sources, job, err := p.begin(ctx, sourceNames)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := p.execute(ctx, job, sources); err != nil {
			p.log.Error("background scrape failed",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}()
	return job, nil
}

func (p *Pipeline) begin(ctx context.Context, sourceNames []string) ([]source.Source, *model.ScrapeJob, error) {
	sources, err := p.registry.Select(sourceNames)
	if err != nil {
		return nil, nil, err
	}

	job, err := p.store.CreateJob(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "creating scrape job")
	}
	job.Status = model.JobRunning
	if err := p.store.UpdateJob(ctx, job); err != nil {
		return nil, nil, eris.Wrap(err, "starting scrape job")
	}
	return sources, job, nil
}

func (p *Pipeline) execute(ctx context.Context, job *model.ScrapeJob, sources []source.Source) error {
	counts, srcErrs := p.discoverAndIngest(ctx, sources)

	job.Counts = counts
	if len(srcErrs) == len(sources) && len(sources) > 0 {
		job.Status = model.JobFailed
	} else {
		job.Status = model.JobDone
	}
	job.Error = strings.Join(srcErrs, "; ")
	now := time.Now().UTC()
	job.FinishedAt = &now

	if err := p.store.UpdateJob(ctx, job); err != nil {
		return eris.Wrap(err, "finishing scrape job")
	}

	p.log.Info("scrape run finished",
		zap.String("job_id", job.ID),
		zap.String("status", string(job.Status)),
		zap.Int("new_leads", job.TotalNew()),
		zap.Int("source_errors", len(srcErrs)))

	if job.Status == model.JobDone && p.opts.AutoScore {
		if _, err := scorer.ScoreUnscored(ctx, p.store, p.opts.Rules); err != nil {
			p.log.Warn("post-scrape scoring failed", zap.Error(err))
		}
	}

	return nil
}

// discoverAndIngest fans out one goroutine per adapter. Each adapter owns
// its host's pacing, so parallelism across adapters is safe.
func (p *Pipeline) discoverAndIngest(ctx context.Context, sources []source.Source) (map[string]int, []string) {
	var mu sync.Mutex
	counts := make(map[string]int, len(sources))
	var srcErrs []string

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			name := src.Name()
			log := p.log.With(zap.String("source", name))

			candidates, err := src.Discover(gctx)
			if err != nil {
				log.Warn("source discovery failed", zap.Error(err))
				mu.Lock()
				srcErrs = append(srcErrs, name+": "+err.Error())
				mu.Unlock()
				return nil
			}

			created, err := p.ingestor.IngestAll(gctx, candidates)
			if err != nil {
				log.Warn("ingest aborted", zap.Error(err))
				mu.Lock()
				srcErrs = append(srcErrs, name+": "+err.Error())
				mu.Unlock()
				return nil
			}

			log.Info("source complete",
				zap.Int("candidates", len(candidates)),
				zap.Int("new_leads", created))
			mu.Lock()
			counts[name] = created
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines report through srcErrs

	return counts, srcErrs
}
