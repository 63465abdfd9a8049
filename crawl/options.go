package crawl

import (
	"time"

	"github.com/fwojciec/ytcomments"
)

// Defaults for request resilience and pacing.
const (
	DefaultRetries    = 10
	DefaultRetryDelay = 20 * time.Second
	DefaultPaceDelay  = 1 * time.Second
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

type config struct {
	retries     int
	retryDelay  time.Duration
	paceDelay   time.Duration
	limit       int
	seen        []string
	rateLimiter ytcomments.DomainLimiter
	logger      LogFunc
	progress    ProgressFunc
}

func newConfig(opts []Option) config {
	cfg := config{
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		paceDelay:  DefaultPaceDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.retries <= 0 {
		cfg.retries = 1
	}
	return cfg
}

// Option configures a Crawler or a Requester.
type Option func(*config)

// WithRetries sets the number of attempts made for each AJAX request.
// Defaults to DefaultRetries. Values below 1 mean a single attempt.
func WithRetries(n int) Option {
	return func(c *config) {
		c.retries = n
	}
}

// WithRetryDelay sets the fixed sleep between failed attempts.
// Defaults to DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *config) {
		c.retryDelay = d
	}
}

// WithPaceDelay sets the sleep after every AJAX page or reply group.
// Defaults to DefaultPaceDelay.
func WithPaceDelay(d time.Duration) Option {
	return func(c *config) {
		c.paceDelay = d
	}
}

// WithLimit caps the number of comments a crawl emits. Zero means no cap.
func WithLimit(n int) Option {
	return func(c *config) {
		c.limit = n
	}
}

// WithSeen pre-seeds the deduplication set. Comments with these IDs are
// never emitted, which lets a crawl resume on top of stored results.
func WithSeen(ids []string) Option {
	return func(c *config) {
		c.seen = ids
	}
}

// WithRateLimiter makes every request wait on a limiter shared between
// crawls. The fetcher's host is the rate limit key.
func WithRateLimiter(l ytcomments.DomainLimiter) Option {
	return func(c *config) {
		c.rateLimiter = l
	}
}

// WithLogger reports retry attempts and abandoned phases.
func WithLogger(fn LogFunc) Option {
	return func(c *config) {
		c.logger = fn
	}
}

// WithProgress registers a callback receiving crawl progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}
