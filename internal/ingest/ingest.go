// Package ingest converts source candidates into persisted leads,
// deduplicating on contact key so repeated scrapes never create
// duplicate rows.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

// LeadWriter is the slice of the storage layer ingest needs.
type LeadWriter interface {
	InsertIfAbsent(ctx context.Context, lead *model.Lead) (bool, error)
}

// Ingestor persists candidates for a single business.
type Ingestor struct {
	store    LeadWriter
	business string
	log      *zap.Logger
}

// New returns an Ingestor writing leads tagged with the given business.
func New(store LeadWriter, business string) *Ingestor {
	return &Ingestor{
		store:    store,
		business: business,
		log:      zap.L().With(zap.String("component", "ingest")),
	}
}

// Ingest persists one candidate. Returns true when a new lead row was
// created, false when the contact key already existed for this business.
func (i *Ingestor) Ingest(ctx context.Context, c model.Candidate) (bool, error) {
	lead, err := i.toLead(c)
	if err != nil {
		return false, err
	}
	inserted, err := i.store.InsertIfAbsent(ctx, lead)
	if err != nil {
		return false, eris.Wrapf(err, "inserting lead %q", lead.ContactKey)
	}
	return inserted, nil
}

// IngestAll persists a batch of candidates and returns the count of newly
// created leads. Invalid or failing records are logged and skipped.
func (i *Ingestor) IngestAll(ctx context.Context, candidates []model.Candidate) (int, error) {
	created := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return created, eris.Wrap(err, "ingest interrupted")
		}
		inserted, err := i.Ingest(ctx, c)
		if err != nil {
			i.log.Warn("skipping candidate",
				zap.String("contact_key", c.ContactKey),
				zap.String("source", c.Source),
				zap.Error(err))
			continue
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

func (i *Ingestor) toLead(c model.Candidate) (*model.Lead, error) {
	key := strings.TrimSpace(c.ContactKey)
	if key == "" {
		return nil, eris.New("candidate has no contact key")
	}
	if strings.TrimSpace(c.Message) == "" && strings.TrimSpace(c.Title) == "" {
		return nil, eris.Errorf("candidate %q has no text", key)
	}

	created := c.DiscoveredAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &model.Lead{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(c.Name),
		ContactKey: key,
		Source:     c.Source,
		Message:    c.Message,
		Title:      c.Title,
		URL:        c.URL,
		Status:     model.StatusNew,
		Business:   i.business,
		CreatedAt:  created,
	}, nil
}
