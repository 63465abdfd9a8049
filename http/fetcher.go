// Package http provides an HTTP-based implementation of ytcomments.PageFetcher.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/ytcomments"
	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultBaseURL is the site the comments are downloaded from.
	DefaultBaseURL = "https://www.youtube.com"

	// DefaultUserAgent is a desktop browser string. The comment pages are
	// only served in their classic layout to desktop browsers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/48.0.2564.116 Safari/537.36"

	// DefaultFetchTimeout is the default timeout for HTTP requests.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultMaxBodySize caps the bytes read from one response.
	DefaultMaxBodySize = 16 << 20
)

// Ensure Fetcher implements ytcomments.PageFetcher at compile time.
var _ ytcomments.PageFetcher = (*Fetcher)(nil)

// Fetcher performs requests for a single crawl. It keeps its own cookie
// jar, so the cookies set by the initial page accompany the AJAX posts.
type Fetcher struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
	timeout   time.Duration
	maxBody   int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the largest response body the fetcher accepts.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithBaseURL points the fetcher at a different site root.
// Used by tests to target an httptest server.
func WithBaseURL(u *url.URL) Option {
	return func(f *Fetcher) {
		if u != nil {
			f.baseURL = u
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher with an empty session.
func NewFetcher(opts ...Option) *Fetcher {
	base, _ := url.Parse(DefaultBaseURL)
	f := &Fetcher{
		baseURL:   base,
		userAgent: DefaultUserAgent,
		timeout:   DefaultFetchTimeout,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	// cookiejar.New only fails on a nil PublicSuffixList lookup error, which
	// publicsuffix.List never produces.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	f.client = &http.Client{
		Jar:     jar,
		Timeout: f.timeout,
	}

	return f
}

// FetchPage retrieves the comments page of a video.
func (f *Fetcher) FetchPage(ctx context.Context, videoID string) (string, error) {
	if videoID == "" {
		return "", ytcomments.Errorf(ytcomments.EINVALID, "video ID required")
	}

	u := f.endpoint("all_comments", url.Values{"v": {videoID}})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ytcomments.Errorf(ytcomments.ENOTFOUND, "video %s not found", videoID)
	case resp.StatusCode != http.StatusOK:
		return "", ytcomments.Errorf(ytcomments.ETRANSIENT, "HTTP %d for %s", resp.StatusCode, u)
	}

	body, err := f.readBody(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// PostAJAX sends one form-encoded request to the AJAX endpoint. The status
// code is returned as is for the caller to interpret.
func (f *Fetcher) PostAJAX(ctx context.Context, r *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
	u := f.endpoint("comment_ajax", r.Params)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(r.Form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read AJAX response: %w", err)
	}

	return &ytcomments.AJAXResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// Host returns the host of the base URL.
func (f *Fetcher) Host() string {
	return f.baseURL.Host
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// readBody reads at most maxBody bytes and fails on anything longer.
func (f *Fetcher) readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBody {
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "response body exceeds %d bytes", f.maxBody)
	}
	return body, nil
}

func (f *Fetcher) endpoint(path string, params url.Values) string {
	u := f.baseURL.JoinPath(path)
	u.RawQuery = params.Encode()
	return u.String()
}
