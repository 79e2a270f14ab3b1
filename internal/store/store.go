// Package store persists leads and scrape jobs behind a driver-agnostic
// interface, with SQLite for single-operator use and Postgres for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// Lookup sentinels. GetLead and GetJob return these; GetByContactKey maps
// a missing lead to (nil, nil) since absence is the expected case there.
var (
	ErrLeadNotFound = eris.New("lead not found")
	ErrJobNotFound  = eris.New("job not found")
)

// ScoreStats summarizes the scored lead population.
type ScoreStats struct {
	Total    int     `json:"total"`
	Scored   int     `json:"scored"`
	Hot      int     `json:"hot"`
	Warm     int     `json:"warm"`
	AvgScore float64 `json:"avg_score"`
}

// Store defines the persistence interface for the lead pipeline.
type Store interface {
	// Leads
	InsertIfAbsent(ctx context.Context, lead *model.Lead) (bool, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	GetByContactKey(ctx context.Context, business, contactKey string) (*model.Lead, error)
	ListUnscored(ctx context.Context) ([]*model.Lead, error)
	ListAll(ctx context.Context) ([]*model.Lead, error)
	ListByMinScore(ctx context.Context, minScore, limit int) ([]*model.Lead, error)
	UpdateScore(ctx context.Context, id string, score int, reason string, status model.LeadStatus) error
	UpdateStatus(ctx context.Context, id string, status model.LeadStatus) error

	// Reporting
	CountBySource(ctx context.Context) (map[string]int, error)
	ScoreStats(ctx context.Context, hotThreshold, warmThreshold int) (*ScoreStats, error)

	// Scrape jobs
	CreateJob(ctx context.Context) (*model.ScrapeJob, error)
	UpdateJob(ctx context.Context, job *model.ScrapeJob) error
	GetJob(ctx context.Context, id string) (*model.ScrapeJob, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the Store named by the config.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
