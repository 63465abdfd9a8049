package crawl

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Requester sends AJAX requests with a bounded number of attempts and a
// fixed delay between them. Every failed attempt is treated as transient,
// whatever its cause.
type Requester struct {
	fetcher     ytcomments.PageFetcher
	rateLimiter ytcomments.DomainLimiter
	attempts    int
	delay       time.Duration
	logger      LogFunc
}

// NewRequester creates a Requester around fetcher. Only the retry, rate
// limiter and logger options apply.
func NewRequester(fetcher ytcomments.PageFetcher, opts ...Option) *Requester {
	cfg := newConfig(opts)
	return newRequester(fetcher, cfg)
}

func newRequester(fetcher ytcomments.PageFetcher, cfg config) *Requester {
	return &Requester{
		fetcher:     fetcher,
		rateLimiter: cfg.rateLimiter,
		attempts:    cfg.retries,
		delay:       cfg.retryDelay,
		logger:      cfg.logger,
	}
}

// Do sends req until a 200 response arrives or the attempts run out.
//
// Exhaustion is reported as an EEXHAUSTED error and a 200 response with an
// unexpected body as EMALFORMED; callers treat both as the end of the
// current phase. A canceled context is returned as is.
func (r *Requester) Do(ctx context.Context, req *ytcomments.AJAXRequest) (*ytcomments.Page, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if r.rateLimiter != nil {
			if err := r.rateLimiter.Wait(ctx, r.fetcher.Host()); err != nil {
				return nil, err
			}
		}

		resp, err := r.fetcher.PostAJAX(ctx, req)
		if err == nil && resp.StatusCode == http.StatusOK {
			return decodePage(resp.Body)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err == nil {
			err = ytcomments.Errorf(ytcomments.ETRANSIENT, "HTTP %d", resp.StatusCode)
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		if r.logger != nil {
			r.logger("  retry in %s (attempt %d/%d): %v", r.delay, attempt+1, r.attempts, err)
		}
		if err := sleep(ctx, r.delay); err != nil {
			return nil, err
		}
	}

	return nil, ytcomments.Errorf(ytcomments.EEXHAUSTED, "no successful response after %d attempts: %v", r.attempts, lastErr)
}

// payload is the JSON body returned by the AJAX endpoint.
type payload struct {
	PageToken   *string `json:"page_token"`
	HTMLContent *string `json:"html_content"`
}

func decodePage(body []byte) (*ytcomments.Page, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ytcomments.Errorf(ytcomments.EMALFORMED, "invalid JSON payload: %v", err)
	}
	if p.HTMLContent == nil {
		return nil, ytcomments.Errorf(ytcomments.EMALFORMED, "payload has no html_content")
	}

	page := &ytcomments.Page{HTML: *p.HTMLContent}
	if p.PageToken != nil {
		page.Cursor = *p.PageToken
	}
	return page, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
