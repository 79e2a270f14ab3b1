package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queencity-ops/leadgen-cli/internal/config"
)

const classifiedsPage = `<html><body>
<li class="result">
  <a href="https://charlotte.craigslist.org/hss/d/duct-cleaning/111.html" class="cl-app-anchor text-only">
    <span>Air duct &amp; dryer vent cleaning special</span></a>
</li>
<li class="result">
  <a href="/relative/path" class="cl-app-anchor"><span>Relative link skipped</span></a>
</li>
<li class="result">
  <a href="https://charlotte.craigslist.org/hss/d/short/222.html" class="cl-app-anchor"><span>Hi</span></a>
</li>
<li class="result">
  <a href="https://charlotte.craigslist.org/hss/d/furnace/333.html" class="cl-app-anchor">
    <span>Furnace cleaning this week</span></a>
</li>
</body></html>`

func newClassifiedsTestSource(t *testing.T, page string, cfg config.ClassifiedsConfig) (*ClassifiedsSource, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	s := NewClassifiedsSource(cfg, testFetcher())
	s.searchURL = func(city, query string) string {
		return fmt.Sprintf("%s/search?city=%s&q=%s", srv.URL, city, strings.ReplaceAll(query, " ", "+"))
	}
	return s, &calls
}

func TestClassifiedsSource_Discover(t *testing.T) {
	s, calls := newClassifiedsTestSource(t, classifiedsPage, config.ClassifiedsConfig{
		Cities:  []string{"charlotte"},
		Queries: []string{"duct cleaning"},
	})

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, 1, *calls)

	first := candidates[0]
	assert.Equal(t, "Air duct & dryer vent cleaning special", first.Title)
	assert.Equal(t, "https://charlotte.craigslist.org/hss/d/duct-cleaning/111.html", first.ContactKey)
	assert.Equal(t, "craigslist_charlotte", first.Source)
	assert.Equal(t, "duct cleaning", first.Message)

	assert.Equal(t, "Furnace cleaning this week", candidates[1].Title)
}

func TestClassifiedsSource_OneFetchPerCityQueryPair(t *testing.T) {
	s, calls := newClassifiedsTestSource(t, classifiedsPage, config.ClassifiedsConfig{
		Cities:  []string{"charlotte", "raleigh"},
		Queries: []string{"duct cleaning", "dryer vent"},
	})

	_, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, *calls)
}

func TestClassifiedsSource_MalformedPage(t *testing.T) {
	s, _ := newClassifiedsTestSource(t, `<html>cl-app-anchor with nothing around it`, config.ClassifiedsConfig{
		Cities:  []string{"charlotte"},
		Queries: []string{"duct cleaning"},
	})

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestClassifiedsSource_CapsPerPage(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<a href="https://x.craigslist.org/d/%d.html" class="cl-app-anchor"><span>Listing number %d</span></a>`, i, i)
	}
	s, _ := newClassifiedsTestSource(t, b.String(), config.ClassifiedsConfig{
		Cities:  []string{"charlotte"},
		Queries: []string{"q"},
	})

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, maxListingsPerPage)
}

func TestClassifiedsSource_Non200Skipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	s := NewClassifiedsSource(config.ClassifiedsConfig{
		Cities:  []string{"charlotte"},
		Queries: []string{"duct cleaning"},
	}, testFetcher())
	s.searchURL = func(_, _ string) string { return srv.URL }

	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestClassifiedsSource_NoTargets(t *testing.T) {
	s := NewClassifiedsSource(config.ClassifiedsConfig{}, testFetcher())
	candidates, err := s.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
