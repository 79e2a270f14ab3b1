package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	created_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'pending',
	counts      TEXT,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_business_contact_key ON leads(business, contact_key);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
CREATE INDEX IF NOT EXISTS idx_scrape_jobs_status ON scrape_jobs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const leadColumns = `id, business, contact_key, name, source, title, message, url, score, score_reason, status, notes, created_at`

func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, lead *model.Lead) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Business, lead.ContactKey, lead.Name, lead.Source,
		lead.Title, lead.Message, lead.URL, lead.Score, lead.ScoreReason,
		string(lead.Status), lead.Notes, lead.CreatedAt.UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert lead %s", lead.ContactKey)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	return scanLead(row)
}

func (s *SQLiteStore) GetByContactKey(ctx context.Context, business, contactKey string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE business = ? AND contact_key = ?`,
		business, contactKey)
	lead, err := scanLead(row)
	if eris.Is(err, ErrLeadNotFound) {
		return nil, nil
	}
	return lead, err
}

func (s *SQLiteStore) ListUnscored(ctx context.Context) ([]*model.Lead, error) {
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE status = ? ORDER BY created_at`,
		string(model.StatusNew))
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]*model.Lead, error) {
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at`)
}

func (s *SQLiteStore) ListByMinScore(ctx context.Context, minScore, limit int) ([]*model.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.listLeads(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE score >= ? ORDER BY score DESC, created_at LIMIT ?`,
		minScore, limit)
}

func (s *SQLiteStore) listLeads(ctx context.Context, query string, args ...any) ([]*model.Lead, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, id string, score int, reason string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET score = ?, score_reason = ?, status = ? WHERE id = ?`,
		score, reason, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update score %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}
	return checkRowsAffected(res, "lead", id)
}

func (s *SQLiteStore) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, COUNT(*) FROM leads GROUP BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by source")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan source count")
		}
		counts[source] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count by source iterate")
}

func (s *SQLiteStore) ScoreStats(ctx context.Context, hotThreshold, warmThreshold int) (*ScoreStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN score > 0 THEN 1 END),
			COUNT(CASE WHEN score >= ? THEN 1 END),
			COUNT(CASE WHEN score >= ? AND score < ? THEN 1 END),
			COALESCE(AVG(CASE WHEN score > 0 THEN score END), 0)
		FROM leads`,
		hotThreshold, warmThreshold, hotThreshold)

	var stats ScoreStats
	err := row.Scan(&stats.Total, &stats.Scored, &stats.Hot, &stats.Warm, &stats.AvgScore)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: score stats")
	}
	return &stats, nil
}

func (s *SQLiteStore) CreateJob(ctx context.Context) (*model.ScrapeJob, error) {
	job := &model.ScrapeJob{
		ID:        uuid.New().String(),
		Status:    model.JobPending,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_jobs (id, status, started_at) VALUES (?, ?, ?)`,
		job.ID, string(job.Status), job.StartedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert job")
	}
	return job, nil
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, job *model.ScrapeJob) error {
	countsJSON, err := json.Marshal(job.Counts)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal job counts")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE scrape_jobs SET status = ?, counts = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(job.Status), string(countsJSON), job.Error, job.FinishedAt, job.ID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job %s", job.ID)
	}
	return checkRowsAffected(res, "job", job.ID)
}

func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*model.ScrapeJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, counts, error, started_at, finished_at FROM scrape_jobs WHERE id = ?`, id)

	var job model.ScrapeJob
	var countsJSON sql.NullString
	var finishedAt sql.NullTime
	err := row.Scan(&job.ID, &job.Status, &countsJSON, &job.Error, &job.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get job")
	}
	if countsJSON.Valid && countsJSON.String != "" && countsJSON.String != "null" {
		if err := json.Unmarshal([]byte(countsJSON.String), &job.Counts); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal job counts")
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var status string
	err := row.Scan(&l.ID, &l.Business, &l.ContactKey, &l.Name, &l.Source,
		&l.Title, &l.Message, &l.URL, &l.Score, &l.ScoreReason,
		&status, &l.Notes, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan lead")
	}
	l.Status = model.LeadStatus(status)
	return &l, nil
}
