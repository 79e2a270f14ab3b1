package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/fetcher"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/textutil"
)

const (
	// listingAnchorMarker is the class on craigslist result links. The
	// surrounding markup shifts between redesigns; the anchor class has
	// been stable.
	listingAnchorMarker = "cl-app-anchor"

	// maxListingsPerPage caps extraction per results page.
	maxListingsPerPage = 20
)

// ClassifiedsSource scans craigslist search result pages for listing links.
// Extraction is a marker-based string scan, not a DOM parse; pages that do
// not match the expected structure yield fewer (or zero) candidates.
type ClassifiedsSource struct {
	cfg       config.ClassifiedsConfig
	fetch     fetcher.Fetcher
	searchURL func(city, query string) string
}

// NewClassifiedsSource creates the craigslist adapter.
func NewClassifiedsSource(cfg config.ClassifiedsConfig, f fetcher.Fetcher) *ClassifiedsSource {
	return &ClassifiedsSource{
		cfg:   cfg,
		fetch: f,
		searchURL: func(city, query string) string {
			encoded := strings.ReplaceAll(query, " ", "+")
			return fmt.Sprintf("https://%s.craigslist.org/search/sss?query=%s&sort=date", city, encoded)
		},
	}
}

func (s *ClassifiedsSource) Name() string { return "classifieds" }

// Discover issues one fetch per (city, query) pair in configured order.
func (s *ClassifiedsSource) Discover(ctx context.Context) ([]model.Candidate, error) {
	if len(s.cfg.Cities) == 0 || len(s.cfg.Queries) == 0 {
		zap.L().Info("classifieds: no cities or queries configured, skipping")
		return nil, nil
	}

	log := zap.L().With(zap.String("source", s.Name()))
	var candidates []model.Candidate

	for _, city := range s.cfg.Cities {
		for _, query := range s.cfg.Queries {
			if ctx.Err() != nil {
				return candidates, ctx.Err()
			}

			url := s.searchURL(city, query)
			resp, err := s.fetch.Get(ctx, url)
			if err != nil {
				log.Warn("search fetch failed", zap.String("city", city), zap.String("query", query), zap.Error(err))
				continue
			}
			if !resp.OK() {
				log.Warn("search returned non-200", zap.String("city", city), zap.Int("status", resp.StatusCode))
				continue
			}

			found := s.extractListings(string(resp.Body), city, query)
			candidates = append(candidates, found...)
			log.Debug("search page scanned",
				zap.String("city", city),
				zap.String("query", query),
				zap.Int("listings", len(found)),
			)
		}
	}

	log.Info("classifieds discovery complete", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// extractListings walks the page for anchor markers, pulling the nearest
// preceding href and the following link text. Malformed regions are skipped.
func (s *ClassifiedsSource) extractListings(html, city, query string) []model.Candidate {
	var out []model.Candidate
	now := time.Now().UTC()
	pos := 0

	for len(out) < maxListingsPerPage {
		idx := strings.Index(html[pos:], listingAnchorMarker)
		if idx < 0 {
			break
		}
		idx += pos

		href, ok := precedingHref(html, idx)
		pos = idx + len(listingAnchorMarker)
		if !ok {
			continue
		}
		if !strings.HasPrefix(href, "http") {
			continue
		}

		title, next, ok := followingLinkText(html, idx+len(listingAnchorMarker))
		if !ok {
			continue
		}
		pos = next
		if len(title) < 5 {
			continue
		}

		out = append(out, model.Candidate{
			Title:        textutil.UnescapeEntities(title),
			Message:      query,
			Source:       "craigslist_" + city,
			ContactKey:   href,
			URL:          href,
			DiscoveredAt: now,
		})
	}
	return out
}

// precedingHref finds the href attribute value closest before idx.
func precedingHref(html string, idx int) (string, bool) {
	hrefIdx := strings.LastIndex(html[:idx], `href="`)
	if hrefIdx < 0 {
		return "", false
	}
	start := hrefIdx + len(`href="`)
	end := strings.Index(html[start:], `"`)
	if end < 0 {
		return "", false
	}
	return html[start : start+end], true
}

// followingLinkText returns the stripped text of the anchor whose opening tag
// contains idx, plus the scan position after the anchor close.
func followingLinkText(html string, idx int) (string, int, bool) {
	open := strings.Index(html[idx:], ">")
	if open < 0 {
		return "", 0, false
	}
	start := idx + open + 1
	end := strings.Index(html[start:], "</a>")
	if end < 0 {
		return "", 0, false
	}
	text := textutil.StripTags(html[start : start+end])
	return strings.TrimSpace(text), start + end, true
}
