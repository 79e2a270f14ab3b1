package source

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/queencity-ops/leadgen-cli/internal/config"
	"github.com/queencity-ops/leadgen-cli/internal/model"
	"github.com/queencity-ops/leadgen-cli/internal/textutil"
)

const fbLoginURL = "https://www.facebook.com/login"

// Credentials is the login pair for the Facebook session. Supplied per run
// by the operator; never persisted.
type Credentials struct {
	Email    string
	Password string
}

// fbPost is one extracted group post, as returned by the in-page script.
// Group is filled in Go after extraction.
type fbPost struct {
	Author  string `json:"author"`
	Message string `json:"message"`
	Link    string `json:"link"`
	Group   string `json:"-"`
}

// sessionMu serializes browser sessions process-wide: the adapter owns one
// exclusive session per invocation and two runs must never share one.
var sessionMu sync.Mutex

// FacebookSource drives a real browser session through configured groups,
// extracting keyword-matching posts from the lazily-loaded feed.
type FacebookSource struct {
	cfg   config.FacebookConfig
	creds *Credentials

	// scrapeGroups runs the browser session. Swappable in tests.
	scrapeGroups func(ctx context.Context) ([]fbPost, error)
}

// NewFacebookSource creates the Facebook Groups adapter.
func NewFacebookSource(cfg config.FacebookConfig, creds *Credentials) *FacebookSource {
	if cfg.ScrollPasses <= 0 {
		cfg.ScrollPasses = 5
	}
	if cfg.LoginWaitSecs <= 0 {
		cfg.LoginWaitSecs = 60
	}
	s := &FacebookSource{cfg: cfg, creds: creds}
	s.scrapeGroups = s.runBrowser
	return s
}

func (s *FacebookSource) Name() string { return "facebook" }

// Discover authenticates and walks each configured group. Missing credentials
// or an empty group list make this a zero-candidate no-op: a misconfigured
// adapter must not fail the pipeline.
func (s *FacebookSource) Discover(ctx context.Context) ([]model.Candidate, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	if len(s.cfg.Groups) == 0 {
		log.Info("skipping: no groups configured", zap.Error(ErrNoTargets))
		return nil, nil
	}
	if s.creds == nil || s.creds.Email == "" || s.creds.Password == "" {
		log.Info("skipping: no credentials provided", zap.Error(ErrNoCredentials))
		return nil, nil
	}

	sessionMu.Lock()
	defer sessionMu.Unlock()

	posts, err := s.scrapeGroups(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidates := make([]model.Candidate, 0, len(posts))
	for _, p := range dedupPosts(posts) {
		contactKey := p.Link
		if contactKey == "" {
			contactKey = p.Group + "_" + p.Author
		}
		candidates = append(candidates, model.Candidate{
			Name:         p.Author,
			Message:      textutil.Truncate(p.Message, model.MaxMessageLen),
			Source:       groupLabel(p.Group),
			ContactKey:   contactKey,
			URL:          p.Link,
			DiscoveredAt: now,
		})
	}

	log.Info("facebook discovery complete", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// runBrowser owns the chromedp session: login, group navigation, scrolling,
// and in-page extraction. Per-group failures are logged and skipped.
func (s *FacebookSource) runBrowser(ctx context.Context) ([]fbPost, error) {
	log := zap.L().With(zap.String("source", s.Name()))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := s.login(browserCtx); err != nil {
		return nil, err
	}

	keywordsJSON, err := json.Marshal(lowercaseAll(s.cfg.Keywords))
	if err != nil {
		return nil, eris.Wrap(err, "facebook: marshal keywords")
	}
	extractJS := strings.Replace(extractPostsJS, "__KEYWORDS__", string(keywordsJSON), 1)

	var allPosts []fbPost

	for _, group := range s.cfg.Groups {
		if ctx.Err() != nil {
			return allPosts, ctx.Err()
		}

		gLog := log.With(zap.String("group", group))
		gLog.Info("scraping group")

		var posts []fbPost
		err := chromedp.Run(browserCtx,
			chromedp.Navigate(group),
			chromedp.Sleep(3*time.Second),
			scrollFeed(s.cfg.ScrollPasses),
			chromedp.Evaluate(extractJS, &posts),
		)
		if err != nil {
			gLog.Warn("group scrape failed", zap.Error(err))
			continue
		}

		gLog.Info("group scraped", zap.Int("posts", len(posts)))
		for _, p := range posts {
			p.Group = group
			allPosts = append(allPosts, p)
		}

		// Randomized inter-group delay, 3-6s.
		delay := 3*time.Second + time.Duration(rand.Int64N(int64(3*time.Second)))
		select {
		case <-ctx.Done():
			return allPosts, ctx.Err()
		case <-time.After(delay):
		}
	}

	return allPosts, nil
}

// login signs into Facebook and handles the verification-challenge suspend
// point: when the session lands on a checkpoint page it waits a bounded
// window for manual intervention, then fails with ErrAuthChallenge.
func (s *FacebookSource) login(browserCtx context.Context) error {
	log := zap.L().With(zap.String("source", s.Name()))

	var location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(fbLoginURL),
		chromedp.WaitVisible(`#email`, chromedp.ByID),
		chromedp.SendKeys(`#email`, s.creds.Email, chromedp.ByID),
		chromedp.SendKeys(`#pass`, s.creds.Password, chromedp.ByID),
		chromedp.Click(`[name="login"]`, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
		chromedp.Location(&location),
	)
	if err != nil {
		return eris.Wrap(err, "facebook: login navigation")
	}

	if isChallengeURL(location) {
		wait := time.Duration(s.cfg.LoginWaitSecs) * time.Second
		log.Warn("login hit a verification challenge, waiting for manual completion",
			zap.Duration("window", wait),
		)
		if err := chromedp.Run(browserCtx,
			chromedp.Sleep(wait),
			chromedp.Location(&location),
		); err != nil {
			return eris.Wrap(err, "facebook: challenge wait")
		}
		if isChallengeURL(location) {
			return ErrAuthChallenge
		}
	}

	log.Info("facebook login complete")
	return nil
}

// scrollFeed triggers lazy loading with bounded scroll-and-wait cycles.
func scrollFeed(passes int) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for i := 0; i < passes; i++ {
			if err := chromedp.Run(ctx,
				chromedp.Evaluate(`window.scrollBy(0, 2500)`, nil),
				chromedp.Sleep(2*time.Second),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// isChallengeURL reports whether the session is stuck on a login or
// checkpoint page instead of the feed.
func isChallengeURL(u string) bool {
	return strings.Contains(u, "checkpoint") || strings.Contains(u, "login")
}

// dedupPosts drops repeats by (author, first 50 chars of message). Feed
// virtualization makes the same post show up under multiple selectors.
func dedupPosts(posts []fbPost) []fbPost {
	seen := make(map[string]struct{}, len(posts))
	out := posts[:0:0]
	for _, p := range posts {
		snippet := p.Message
		if len(snippet) > 50 {
			snippet = snippet[:50]
		}
		key := p.Author + "\x00" + snippet
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// groupLabel turns a group URL into the stored source string.
func groupLabel(groupURL string) string {
	name := "group"
	if _, after, found := strings.Cut(groupURL, "/groups/"); found && after != "" {
		name = strings.SplitN(after, "/", 2)[0]
	}
	return "Facebook: " + name
}

func lowercaseAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// extractPostsJS runs inside the page. Selector strategies are tried in
// priority order until one yields elements; each candidate element must meet
// a minimum text length and match at least one keyword.
const extractPostsJS = `(() => {
	const keywords = __KEYWORDS__;
	const results = [];

	const selectors = [
		'[role="article"]',
		'[data-pagelet*="FeedUnit"]',
		'[class*="userContentWrapper"]'
	];

	let articles = [];
	for (const sel of selectors) {
		const found = document.querySelectorAll(sel);
		if (found.length > 0) { articles = found; break; }
	}

	articles.forEach(el => {
		try {
			const fullText = (el.innerText || '').substring(0, 1500);
			const textLower = fullText.toLowerCase();

			if (!keywords.some(kw => textLower.includes(kw))) return;
			if (fullText.length < 30) return;

			const authorEls = el.querySelectorAll(
				'a[href*="/user/"] strong, h2 a, h3 a, [class*="actor"] a'
			);
			const author = authorEls[0] ? authorEls[0].innerText.trim() : '';
			if (!author) return;

			const timeLinks = el.querySelectorAll(
				'a[href*="/groups/"][href*="/posts/"], a[href*="permalink"]'
			);
			const link = timeLinks[0] ? (timeLinks[0].href || '') : '';

			let message = '';
			el.querySelectorAll('[dir="auto"], [data-ad-preview]').forEach(div => {
				if (div.innerText && div.innerText.length > message.length) {
					message = div.innerText;
				}
			});
			if (!message) message = fullText;

			results.push({
				author: author,
				message: message.substring(0, 600).trim(),
				link: link
			});
		} catch (e) {}
	});

	return results;
})()`
