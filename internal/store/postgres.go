package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it,
// which is what the postgres tests run against.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY,
	business     TEXT NOT NULL,
	contact_key  TEXT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	score        INTEGER NOT NULL DEFAULT 0,
	score_reason TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'new',
	notes        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'pending',
	counts      JSONB,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_business_contact_key ON leads(business, contact_key);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_scrape_jobs_status ON scrape_jobs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InsertIfAbsent(ctx context.Context, lead *model.Lead) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (business, contact_key) DO NOTHING`,
		lead.ID, lead.Business, lead.ContactKey, lead.Name, lead.Source,
		lead.Title, lead.Message, lead.URL, lead.Score, lead.ScoreReason,
		string(lead.Status), lead.Notes, lead.CreatedAt.UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert lead %s", lead.ContactKey)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanPgLead(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return lead, err
}

func (s *PostgresStore) GetByContactKey(ctx context.Context, business, contactKey string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE business = $1 AND contact_key = $2`,
		business, contactKey)
	lead, err := scanPgLead(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

func (s *PostgresStore) ListUnscored(ctx context.Context) ([]*model.Lead, error) {
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE status = $1 ORDER BY created_at`,
		string(model.StatusNew))
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*model.Lead, error) {
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at`)
}

func (s *PostgresStore) ListByMinScore(ctx context.Context, minScore, limit int) ([]*model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE score >= $1 ORDER BY score DESC, created_at LIMIT $2`,
		minScore, limit)
}

func (s *PostgresStore) listLeads(ctx context.Context, query string, args ...any) ([]*model.Lead, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateScore(ctx context.Context, id string, score int, reason string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET score = $1, score_reason = $2, status = $3 WHERE id = $4`,
		score, reason, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2`,
		string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM leads GROUP BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by source")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var source string
		var n int64
		if err := rows.Scan(&source, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan source count")
		}
		counts[source] = int(n)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count by source iterate")
}

func (s *PostgresStore) ScoreStats(ctx context.Context, hotThreshold, warmThreshold int) (*ScoreStats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN score > 0 THEN 1 END),
			COUNT(CASE WHEN score >= $1 THEN 1 END),
			COUNT(CASE WHEN score >= $2 AND score < $1 THEN 1 END),
			COALESCE(AVG(CASE WHEN score > 0 THEN score END), 0)
		FROM leads`,
		hotThreshold, warmThreshold)

	var stats ScoreStats
	var total, scored, hot, warm int64
	err := row.Scan(&total, &scored, &hot, &warm, &stats.AvgScore)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: score stats")
	}
	stats.Total = int(total)
	stats.Scored = int(scored)
	stats.Hot = int(hot)
	stats.Warm = int(warm)
	return &stats, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context) (*model.ScrapeJob, error) {
	job := &model.ScrapeJob{
		ID:        uuid.New().String(),
		Status:    model.JobPending,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_jobs (id, status, started_at) VALUES ($1, $2, $3)`,
		job.ID, string(job.Status), job.StartedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}
	return job, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *model.ScrapeJob) error {
	countsJSON, err := json.Marshal(job.Counts)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal job counts")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE scrape_jobs SET status = $1, counts = $2, error = $3, finished_at = $4 WHERE id = $5`,
		string(job.Status), countsJSON, job.Error, job.FinishedAt, job.ID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job %s", job.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("job not found: %s", job.ID)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*model.ScrapeJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, counts, error, started_at, finished_at FROM scrape_jobs WHERE id = $1`, id)

	var job model.ScrapeJob
	var countsJSON []byte
	var finishedAt *time.Time
	err := row.Scan(&job.ID, &job.Status, &countsJSON, &job.Error, &job.StartedAt, &finishedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get job")
	}
	if len(countsJSON) > 0 && string(countsJSON) != "null" {
		if err := json.Unmarshal(countsJSON, &job.Counts); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal job counts")
		}
	}
	job.FinishedAt = finishedAt
	return &job, nil
}

func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var status string
	err := row.Scan(&l.ID, &l.Business, &l.ContactKey, &l.Name, &l.Source,
		&l.Title, &l.Message, &l.URL, &l.Score, &l.ScoreReason,
		&status, &l.Notes, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = model.LeadStatus(status)
	return &l, nil
}
