// Package slog provides logging decorators for the ytcomments services,
// built on log/slog. They are wired in only when debug output is requested.
package slog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Ensure LoggingFetcher implements ytcomments.PageFetcher.
var _ ytcomments.PageFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a PageFetcher with debug logging.
type LoggingFetcher struct {
	next   ytcomments.PageFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next ytcomments.PageFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchPage delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) FetchPage(ctx context.Context, videoID string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch page",
			"video", videoID,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchPage(ctx, videoID)
}

// PostAJAX delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) PostAJAX(ctx context.Context, req *ytcomments.AJAXRequest) (resp *ytcomments.AJAXResponse, err error) {
	defer func(begin time.Time) {
		var status, size int
		if resp != nil {
			status, size = resp.StatusCode, len(resp.Body)
		}
		f.logger.Info("ajax request",
			"action", action(req),
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.PostAJAX(ctx, req)
}

// Host delegates to the wrapped fetcher.
func (f *LoggingFetcher) Host() string {
	return f.next.Host()
}

// Close closes the wrapped fetcher if it holds connections.
func (f *LoggingFetcher) Close() error {
	if c, ok := f.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// action names an AJAX request by its action_ parameter.
func action(req *ytcomments.AJAXRequest) string {
	if req == nil {
		return ""
	}
	for key := range req.Params {
		if name, ok := strings.CutPrefix(key, "action_"); ok {
			return name
		}
	}
	return ""
}
