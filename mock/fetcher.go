package mock

import (
	"context"

	"github.com/fwojciec/ytcomments"
)

var _ ytcomments.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of ytcomments.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, videoID string) (string, error)
	PostAJAXFn  func(ctx context.Context, req *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error)
	HostFn      func() string
	CloseFn     func() error
}

func (f *PageFetcher) FetchPage(ctx context.Context, videoID string) (string, error) {
	return f.FetchPageFn(ctx, videoID)
}

func (f *PageFetcher) PostAJAX(ctx context.Context, req *ytcomments.AJAXRequest) (*ytcomments.AJAXResponse, error) {
	return f.PostAJAXFn(ctx, req)
}

// Host returns "example.com" when HostFn is not set.
func (f *PageFetcher) Host() string {
	if f.HostFn == nil {
		return "example.com"
	}
	return f.HostFn()
}

// Close returns nil when CloseFn is not set.
func (f *PageFetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
