package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queencity-ops/leadgen-cli/internal/model"
)

type fakeWriter struct {
	byKey   map[string]*model.Lead
	failKey string
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{byKey: map[string]*model.Lead{}}
}

func (f *fakeWriter) InsertIfAbsent(ctx context.Context, lead *model.Lead) (bool, error) {
	if lead.ContactKey == f.failKey {
		return false, eris.New("disk full")
	}
	if _, ok := f.byKey[lead.Business+"|"+lead.ContactKey]; ok {
		return false, nil
	}
	f.byKey[lead.Business+"|"+lead.ContactKey] = lead
	return true, nil
}

func candidate(key string) model.Candidate {
	return model.Candidate{
		Name:       "Sarah Mitchell",
		Message:    "anyone do duct cleaning?",
		Source:     "Reddit r/Charlotte",
		ContactKey: key,
	}
}

func TestIngestCreatesLead(t *testing.T) {
	w := newFakeWriter()
	ing := New(w, "american_air_experts")

	inserted, err := ing.Ingest(context.Background(), candidate("https://reddit.com/abc"))
	require.NoError(t, err)
	assert.True(t, inserted)

	lead := w.byKey["american_air_experts|https://reddit.com/abc"]
	require.NotNil(t, lead)
	assert.Equal(t, model.StatusNew, lead.Status)
	assert.Equal(t, 0, lead.Score)
	assert.Equal(t, "american_air_experts", lead.Business)
	assert.False(t, lead.CreatedAt.IsZero())
	_, err = uuid.Parse(lead.ID)
	assert.NoError(t, err)
}

func TestIngestIsIdempotent(t *testing.T) {
	w := newFakeWriter()
	ing := New(w, "biz")
	ctx := context.Background()

	inserted, err := ing.Ingest(ctx, candidate("key-1"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = ing.Ingest(ctx, candidate("key-1"))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Len(t, w.byKey, 1)
}

func TestIngestRejectsEmptyContactKey(t *testing.T) {
	ing := New(newFakeWriter(), "biz")
	_, err := ing.Ingest(context.Background(), model.Candidate{Message: "hi"})
	require.Error(t, err)
}

func TestIngestRejectsEmptyText(t *testing.T) {
	ing := New(newFakeWriter(), "biz")
	_, err := ing.Ingest(context.Background(), model.Candidate{ContactKey: "k"})
	require.Error(t, err)
}

func TestIngestKeepsDiscoveredAt(t *testing.T) {
	w := newFakeWriter()
	ing := New(w, "biz")
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := candidate("k")
	c.DiscoveredAt = ts
	_, err := ing.Ingest(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, ts, w.byKey["biz|k"].CreatedAt)
}

func TestIngestAllSkipsBadRecords(t *testing.T) {
	w := newFakeWriter()
	w.failKey = "broken"
	ing := New(w, "biz")

	created, err := ing.IngestAll(context.Background(), []model.Candidate{
		candidate("a"),
		candidate("broken"),
		{ContactKey: "", Message: "no key"},
		candidate("a"), // duplicate within batch
		candidate("b"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}
