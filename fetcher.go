package ytcomments

import (
	"context"
	"net/url"
)

// Page is a decoded response from the AJAX endpoint.
type Page struct {
	// Cursor continues pagination. Empty means there are no more pages.
	Cursor string

	// HTML is the page fragment holding comments.
	HTML string
}

// AJAXRequest is a single call to the AJAX endpoint.
type AJAXRequest struct {
	// Params is sent in the query string.
	Params url.Values

	// Form is sent as an application/x-www-form-urlencoded body.
	Form url.Values
}

// AJAXResponse is the raw outcome of an AJAX call.
type AJAXResponse struct {
	StatusCode int
	Body       []byte
}

// PageFetcher performs single HTTP requests against the comment site.
// A PageFetcher holds one HTTP session: cookies set by FetchPage are sent
// with later PostAJAX calls. Concurrent crawls must not share one.
type PageFetcher interface {
	// FetchPage retrieves the markup of the canonical comments page for a
	// video. A non-200 response is returned as an error.
	FetchPage(ctx context.Context, videoID string) (string, error)

	// PostAJAX sends one request to the AJAX endpoint and returns the raw
	// response without interpreting its status.
	PostAJAX(ctx context.Context, req *AJAXRequest) (*AJAXResponse, error)

	// Host returns the host requests are sent to, used as rate limit key.
	Host() string
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
