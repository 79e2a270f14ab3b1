package fetcher

import "context"

// Response is a fetched page. Non-2xx statuses are returned here, not as
// errors: callers decide whether a 404 or 429 means "skip" or "give up".
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries usable data.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == 200
}

// Fetcher downloads a single URL. Implementations own politeness: per-host
// rate limiting, realistic headers, bounded redirects.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}
