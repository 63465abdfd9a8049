package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/mock"
	ytslog "github.com/fwojciec/ytcomments/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingFetcher_FetchPage(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, videoID string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		fetcher := ytslog.NewLoggingFetcher(inner, logger)
		html, err := fetcher.FetchPage(context.Background(), "dQw4w9WgXcQ")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "fetch page")
		assert.Contains(t, output, "video=dQw4w9WgXcQ")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			FetchPageFn: func(ctx context.Context, videoID string) (string, error) {
				return "", errors.New("network error")
			},
		}

		fetcher := ytslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.FetchPage(context.Background(), "dQw4w9WgXcQ")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingFetcher_PostAJAX(t *testing.T) {
	t.Parallel()

	t.Run("logs action and status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			PostAJAXFn: func(ctx context.Context, req *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return &ytcomments.AJAXResponse{StatusCode: 503, Body: []byte("busy")}, nil
			},
		}

		fetcher := ytslog.NewLoggingFetcher(inner, logger)
		resp, err := fetcher.PostAJAX(context.Background(), &ytcomments.AJAXRequest{
			Params: url.Values{"action_load_replies": {"1"}, "tab": {"inbox"}},
		})

		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		output := buf.String()
		assert.Contains(t, output, "ajax request")
		assert.Contains(t, output, "action=load_replies")
		assert.Contains(t, output, "status=503")
		assert.Contains(t, output, "bytes=4")
	})

	t.Run("logs error without response", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageFetcher{
			PostAJAXFn: func(ctx context.Context, req *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
				return nil, errors.New("connection reset")
			},
		}

		fetcher := ytslog.NewLoggingFetcher(inner, logger)
		_, err := fetcher.PostAJAX(context.Background(), &ytcomments.AJAXRequest{})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "status=0")
		assert.Contains(t, output, "err=\"connection reset\"")
	})
}

func TestLoggingFetcher_Host(t *testing.T) {
	t.Parallel()

	inner := &mock.PageFetcher{HostFn: func() string { return "www.youtube.com" }}

	fetcher := ytslog.NewLoggingFetcher(inner, slog.New(slog.DiscardHandler))

	assert.Equal(t, "www.youtube.com", fetcher.Host())
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	var closed bool
	inner := &mock.PageFetcher{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	fetcher := ytslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.NoError(t, fetcher.Close())
	assert.True(t, closed)
}
