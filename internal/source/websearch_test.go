package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queencity-ops/leadgen-cli/internal/config"
)

const searchResultsPage = `<html><body>
<div class="result">
  <a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fduct-help&amp;rut=abc" class="result__a">Need duct cleaning &quot;help&quot;</a>
</div>
<div class="result">
  <a rel="nofollow" href="https://www.reddit.com/r/Charlotte/comments/x/" class="result__a">Reddit thread about ducts</a>
</div>
<div class="result">
  <a rel="nofollow" href="https://forum.example.org/thread/42" class="result__a">Furnace cleaning thread</a>
</div>
</body></html>`

func TestWebSearchSource_Discover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	s := NewWebSearchSource(config.SearchConfig{
		Queries: []string{"duct cleaning Charlotte"},
	}, testFetcher())
	s.baseURL = srv.URL + "/html/?q="

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// uddg redirect unwrapped, entities decoded.
	assert.Equal(t, "https://example.com/duct-help", candidates[0].ContactKey)
	assert.Equal(t, `Need duct cleaning "help"`, candidates[0].Title)
	assert.Equal(t, "search_ddg", candidates[0].Source)
	assert.Equal(t, "duct cleaning Charlotte", candidates[0].Message)

	// reddit.com results are excluded; the forum result survives.
	assert.Equal(t, "https://forum.example.org/thread/42", candidates[1].ContactKey)
}

func TestWebSearchSource_QueryFailureSkipped(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "blocked", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(searchResultsPage))
	}))
	defer srv.Close()

	s := NewWebSearchSource(config.SearchConfig{
		Queries: []string{"first", "second"},
	}, testFetcher())
	s.baseURL = srv.URL + "/html/?q="

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, 2, calls)
}

func TestWebSearchSource_NoQueries(t *testing.T) {
	s := NewWebSearchSource(config.SearchConfig{}, testFetcher())
	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDecodeRedirect(t *testing.T) {
	assert.Equal(t, "https://example.com/a b",
		decodeRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%20b&rut=x"))
	assert.Equal(t, "https://plain.example.com/", decodeRedirect("https://plain.example.com/"))
}
