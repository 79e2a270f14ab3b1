package source

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/fetcher"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/textutil"
)

const (
	searchBaseURL = "https://html.duckduckgo.com/html/?q="

	// resultAnchorMarker is the class on DuckDuckGo result links.
	resultAnchorMarker = "result__a"

	// maxResultsPerQuery caps extraction per results page.
	maxResultsPerQuery = 10
)

// WebSearchSource scans DuckDuckGo's HTML results endpoint for configured
// queries. Results pointing back at reddit.com are dropped: the Reddit
// adapter already covers that ground with better data.
type WebSearchSource struct {
	cfg     config.SearchConfig
	fetch   fetcher.Fetcher
	baseURL string
}

// NewWebSearchSource creates the web-search adapter.
func NewWebSearchSource(cfg config.SearchConfig, f fetcher.Fetcher) *WebSearchSource {
	return &WebSearchSource{cfg: cfg, fetch: f, baseURL: searchBaseURL}
}

func (s *WebSearchSource) Name() string { return "websearch" }

// Discover issues one fetch per query in configured order.
func (s *WebSearchSource) Discover(ctx context.Context) ([]model.Candidate, error) {
	if len(s.cfg.Queries) == 0 {
		zap.L().Info("websearch: no queries configured, skipping")
		return nil, nil
	}

	log := zap.L().With(zap.String("source", s.Name()))
	var candidates []model.Candidate

	for _, query := range s.cfg.Queries {
		if ctx.Err() != nil {
			return candidates, ctx.Err()
		}

		resp, err := s.fetch.Get(ctx, s.baseURL+url.QueryEscape(query))
		if err != nil {
			log.Warn("search fetch failed", zap.String("query", query), zap.Error(err))
			continue
		}
		if !resp.OK() {
			log.Warn("search returned non-200", zap.String("query", query), zap.Int("status", resp.StatusCode))
			continue
		}

		found := extractResults(string(resp.Body), query)
		candidates = append(candidates, found...)
		log.Debug("results page scanned", zap.String("query", query), zap.Int("results", len(found)))
	}

	log.Info("websearch discovery complete", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// extractResults string-scans a results page for result anchors. DuckDuckGo
// wraps outbound links in a redirect whose uddg parameter holds the real URL.
func extractResults(html, query string) []model.Candidate {
	var out []model.Candidate
	now := time.Now().UTC()
	pos := 0
	scanned := 0

	for scanned < maxResultsPerQuery {
		idx := strings.Index(html[pos:], resultAnchorMarker)
		if idx < 0 {
			break
		}
		idx += pos

		href, ok := precedingHref(html, idx)
		if !ok {
			pos = idx + len(resultAnchorMarker)
			continue
		}
		href = decodeRedirect(href)

		title, next, ok := followingLinkText(html, idx+len(resultAnchorMarker))
		if !ok {
			pos = idx + len(resultAnchorMarker)
			continue
		}
		pos = next
		scanned++

		if !strings.HasPrefix(href, "http") {
			continue
		}
		if strings.Contains(href, "reddit.com") {
			continue
		}

		out = append(out, model.Candidate{
			Title:        textutil.UnescapeEntities(title),
			Message:      query,
			Source:       "search_ddg",
			ContactKey:   href,
			URL:          href,
			DiscoveredAt: now,
		})
	}
	return out
}

// decodeRedirect unwraps the uddg= redirect parameter when present.
func decodeRedirect(href string) string {
	udIdx := strings.Index(href, "uddg=")
	if udIdx < 0 {
		return href
	}
	target := href[udIdx+len("uddg="):]
	if ampIdx := strings.Index(target, "&"); ampIdx >= 0 {
		target = target[:ampIdx]
	}
	decoded, err := url.QueryUnescape(target)
	if err != nil {
		return href
	}
	return decoded
}
