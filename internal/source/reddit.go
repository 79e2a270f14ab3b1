package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/fetcher"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/textutil"
)

const redditBaseURL = "https://www.reddit.com"

// listingResponse is the shape of Reddit's public listing JSON.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				Author    string `json:"author"`
				SelfText  string `json:"selftext"`
				Permalink string `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditSource pulls recent posts from configured subreddits via the public
// JSON listing endpoint and keeps the ones matching a keyword.
type RedditSource struct {
	cfg     config.RedditConfig
	fetch   fetcher.Fetcher
	baseURL string
}

// NewRedditSource creates the Reddit adapter.
func NewRedditSource(cfg config.RedditConfig, f fetcher.Fetcher) *RedditSource {
	if cfg.PostLimit <= 0 {
		cfg.PostLimit = 50
	}
	return &RedditSource{cfg: cfg, fetch: f, baseURL: redditBaseURL}
}

func (s *RedditSource) Name() string { return "reddit" }

// Discover fetches each configured subreddit in order. A failed or non-200
// subreddit is logged and skipped; it never aborts the rest of the list.
func (s *RedditSource) Discover(ctx context.Context) ([]model.Candidate, error) {
	if len(s.cfg.Subreddits) == 0 {
		zap.L().Info("reddit: no subreddits configured, skipping")
		return nil, nil
	}

	log := zap.L().With(zap.String("source", s.Name()))
	var candidates []model.Candidate

	for _, sub := range s.cfg.Subreddits {
		if ctx.Err() != nil {
			return candidates, ctx.Err()
		}

		url := fmt.Sprintf("%s/r/%s/new.json?limit=%d&t=month&raw_json=1", s.baseURL, sub, s.cfg.PostLimit)
		resp, err := s.fetch.Get(ctx, url)
		if err != nil {
			log.Warn("subreddit fetch failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}
		if !resp.OK() {
			log.Warn("subreddit returned non-200", zap.String("subreddit", sub), zap.Int("status", resp.StatusCode))
			continue
		}

		var listing listingResponse
		if err := json.Unmarshal(resp.Body, &listing); err != nil {
			log.Warn("subreddit parse failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}

		now := time.Now().UTC()
		matched := 0
		for _, child := range listing.Data.Children {
			d := child.Data
			text := strings.ToLower(d.Title + " " + d.SelfText)
			if !matchesAny(text, s.cfg.Keywords) {
				continue
			}
			permalink := "https://reddit.com" + d.Permalink
			candidates = append(candidates, model.Candidate{
				Name:         d.Author,
				Title:        d.Title,
				Message:      textutil.Truncate(d.SelfText, model.MaxMessageLen),
				Source:       "Reddit r/" + sub,
				ContactKey:   permalink,
				URL:          permalink,
				DiscoveredAt: now,
			})
			matched++
		}
		log.Debug("subreddit scanned",
			zap.String("subreddit", sub),
			zap.Int("posts", len(listing.Data.Children)),
			zap.Int("matched", matched),
		)
	}

	log.Info("reddit discovery complete", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// matchesAny reports whether text contains any of the keywords. Keywords are
// compared lowercase; text must already be lowercased.
func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
