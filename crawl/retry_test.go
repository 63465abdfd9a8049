package crawl_test

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/crawl"
	"github.com/fwojciec/ytcomments/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() *ytcomments.AJAXRequest {
	return &ytcomments.AJAXRequest{
		Params: url.Values{"action_load_comments": {"1"}},
		Form:   url.Values{"video_id": {"vid"}},
	}
}

func respond(status int, body string) *ytcomments.AJAXResponse {
	return &ytcomments.AJAXResponse{StatusCode: status, Body: []byte(body)}
}

func TestRequester_Do(t *testing.T) {
	t.Parallel()

	t.Run("decodes cursor and fragment on first success", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts++
				return respond(200, `{"page_token": "t2", "html_content": "<div>page</div>"}`), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetryDelay(0))
		page, err := r.Do(context.Background(), testRequest())

		require.NoError(t, err)
		assert.Equal(t, "t2", page.Cursor)
		assert.Equal(t, "<div>page</div>", page.HTML)
		assert.Equal(t, 1, attempts)
	})

	t.Run("treats missing or null cursor as absent", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{
			`{"html_content": "x"}`,
			`{"page_token": null, "html_content": "x"}`,
		} {
			fetcher := &mock.PageFetcher{
				PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
					return respond(200, body), nil
				},
			}

			page, err := crawl.NewRequester(fetcher, crawl.WithRetryDelay(0)).Do(context.Background(), testRequest())

			require.NoError(t, err)
			assert.Empty(t, page.Cursor)
			assert.Equal(t, "x", page.HTML)
		}
	})

	t.Run("makes exactly the configured number of attempts", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts++
				return respond(503, "unavailable"), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetries(7), crawl.WithRetryDelay(0))
		_, err := r.Do(context.Background(), testRequest())

		require.Error(t, err)
		assert.Equal(t, ytcomments.EEXHAUSTED, ytcomments.ErrorCode(err))
		assert.Contains(t, ytcomments.ErrorMessage(err), "503")
		assert.Equal(t, 7, attempts)
	})

	t.Run("defaults to ten attempts", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts++
				return nil, errors.New("connection reset")
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetryDelay(0))
		_, err := r.Do(context.Background(), testRequest())

		assert.Equal(t, ytcomments.EEXHAUSTED, ytcomments.ErrorCode(err))
		assert.Equal(t, crawl.DefaultRetries, attempts)
	})

	t.Run("retries client errors like server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts++
				if attempts < 3 {
					return respond(403, "forbidden"), nil
				}
				return respond(200, `{"html_content": "ok"}`), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetries(5), crawl.WithRetryDelay(0))
		page, err := r.Do(context.Background(), testRequest())

		require.NoError(t, err)
		assert.Equal(t, "ok", page.HTML)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns EMALFORMED without retrying for invalid JSON", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts++
				return respond(200, "<html>not json</html>"), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetryDelay(0))
		_, err := r.Do(context.Background(), testRequest())

		assert.Equal(t, ytcomments.EMALFORMED, ytcomments.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("returns EMALFORMED when html_content is missing", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return respond(200, `{"page_token": "t2"}`), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetryDelay(0))
		_, err := r.Do(context.Background(), testRequest())

		assert.Equal(t, ytcomments.EMALFORMED, ytcomments.ErrorCode(err))
		assert.Contains(t, ytcomments.ErrorMessage(err), "html_content")
	})

	t.Run("logs each retry", func(t *testing.T) {
		t.Parallel()

		var logs []string
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return respond(500, ""), nil
			},
		}

		r := crawl.NewRequester(fetcher,
			crawl.WithRetries(3),
			crawl.WithRetryDelay(0),
			crawl.WithLogger(func(format string, args ...any) {
				logs = append(logs, format)
			}),
		)
		_, err := r.Do(context.Background(), testRequest())

		require.Error(t, err)
		assert.Len(t, logs, 2, "no retry is logged after the last attempt")
	})

	t.Run("waits between attempts", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return respond(500, ""), nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetries(3), crawl.WithRetryDelay(20*time.Millisecond))

		start := time.Now()
		_, err := r.Do(context.Background(), testRequest())
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	})

	t.Run("stops when context is canceled during delay", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				attempts.Add(1)
				return respond(500, ""), nil
			},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		r := crawl.NewRequester(fetcher, crawl.WithRetryDelay(time.Hour))
		_, err := r.Do(ctx, testRequest())

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("waits on rate limiter before every attempt", func(t *testing.T) {
		t.Parallel()

		var domains []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return respond(500, ""), nil
			},
			HostFn: func() string { return "www.youtube.com" },
		}

		r := crawl.NewRequester(fetcher, crawl.WithRetries(2), crawl.WithRetryDelay(0), crawl.WithRateLimiter(limiter))
		_, _ = r.Do(context.Background(), testRequest())

		assert.Equal(t, []string{"www.youtube.com", "www.youtube.com"}, domains)
	})

	t.Run("returns rate limiter error", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, _ string) error {
				return context.Canceled
			},
		}
		fetcher := &mock.PageFetcher{
			PostAJAXFn: func(_ context.Context, _ *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				t.Fatal("request must not be sent")
				return nil, nil
			},
		}

		r := crawl.NewRequester(fetcher, crawl.WithRateLimiter(limiter))
		_, err := r.Do(context.Background(), testRequest())

		assert.ErrorIs(t, err, context.Canceled)
	})
}
