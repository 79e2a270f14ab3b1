package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// defaultUserAgent mimics a desktop browser. Several of the sources we
	// pull from reject requests with bare library user agents.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxRedirects bounds Location-header following.
	maxRedirects = 5

	// maxBodyBytes caps how much of a response we read.
	maxBodyBytes = 2 * 1024 * 1024
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	RateLimiters map[string]*rate.Limiter

	// DefaultRate applies to hosts without a dedicated limiter.
	// Zero means one request per two seconds.
	DefaultRate rate.Limit
}

// DefaultRateLimiters returns the per-host rate limiters for the sources the
// pipeline hits. Values are requests per second; all are deliberately slow.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"www.reddit.com":        rate.NewLimiter(rate.Every(1500*time.Millisecond), 1),
		"html.duckduckgo.com":   rate.NewLimiter(rate.Every(4*time.Second), 1),
		"charlotte.craigslist.org": rate.NewLimiter(rate.Every(3*time.Second), 1),
		"raleigh.craigslist.org":   rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// HTTPFetcher implements Fetcher using net/http with per-host rate limiting
// and a browser-like header set.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*rate.Limiter
	fallback *rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return eris.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	defaultRate := opts.DefaultRate
	if defaultRate == 0 {
		defaultRate = rate.Every(2 * time.Second)
	}
	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		limiters: limiters,
		fallback: rate.NewLimiter(defaultRate, 1),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return f.fallback
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return f.fallback
}

// Get fetches the URL and returns status plus body. Transport failures and
// timeouts return an error; non-2xx statuses do not.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body from %s", rawURL)
	}

	if resp.StatusCode != http.StatusOK {
		zap.L().Debug("non-200 response",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
