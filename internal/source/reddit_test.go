package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/fetcher"
)

func testFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{DefaultRate: rate.Inf})
}

const redditListing = `{
  "data": {
    "children": [
      {"data": {"title": "Need furnace cleaning recommendation", "author": "alice",
        "selftext": "Just moved to Charlotte, looking for someone to clean our air ducts",
        "permalink": "/r/Charlotte/comments/abc123/need_furnace/"}},
      {"data": {"title": "Best pizza in town?", "author": "bob",
        "selftext": "Looking for pizza recs", "permalink": "/r/Charlotte/comments/def456/pizza/"}}
    ]
  }
}`

func TestRedditSource_Discover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/new.json")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(redditListing))
	}))
	defer srv.Close()

	s := NewRedditSource(config.RedditConfig{
		Subreddits: []string{"Charlotte"},
		Keywords:   []string{"furnace", "air duct"},
		PostLimit:  50,
	}, testFetcher())
	s.baseURL = srv.URL

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "alice", c.Name)
	assert.Equal(t, "Need furnace cleaning recommendation", c.Title)
	assert.Equal(t, "Reddit r/Charlotte", c.Source)
	assert.Equal(t, "https://reddit.com/r/Charlotte/comments/abc123/need_furnace/", c.ContactKey)
	assert.Contains(t, c.Message, "air ducts")
	assert.False(t, c.DiscoveredAt.IsZero())
}

func TestRedditSource_KeywordsCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"children":[
			{"data":{"title":"FURNACE died last night","author":"carol","selftext":"","permalink":"/r/HVAC/comments/x/f/"}}
		]}}`))
	}))
	defer srv.Close()

	s := NewRedditSource(config.RedditConfig{
		Subreddits: []string{"HVAC"},
		Keywords:   []string{"Furnace"},
	}, testFetcher())
	s.baseURL = srv.URL

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestRedditSource_SubFailureSkipped(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "blocked", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(redditListing))
	}))
	defer srv.Close()

	s := NewRedditSource(config.RedditConfig{
		Subreddits: []string{"first", "second"},
		Keywords:   []string{"furnace"},
	}, testFetcher())
	s.baseURL = srv.URL

	// The 429 on the first sub must not abort the second.
	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 2, calls)
}

func TestRedditSource_ParseFailureSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := NewRedditSource(config.RedditConfig{
		Subreddits: []string{"Charlotte"},
		Keywords:   []string{"furnace"},
	}, testFetcher())
	s.baseURL = srv.URL

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestRedditSource_NoSubreddits(t *testing.T) {
	s := NewRedditSource(config.RedditConfig{}, testFetcher())
	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
