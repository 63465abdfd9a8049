package mock

import (
	"context"

	"github.com/fwojciec/ytcomments"
)

var _ ytcomments.CommentReader = (*CommentReader)(nil)

// CommentReader is a mock implementation of ytcomments.CommentReader.
type CommentReader struct {
	CommentIDsFn   func(ctx context.Context, videoID string) ([]string, error)
	FindCommentsFn func(ctx context.Context, filter ytcomments.CommentFilter) ([]*ytcomments.Comment, error)
}

func (r *CommentReader) CommentIDs(ctx context.Context, videoID string) ([]string, error) {
	return r.CommentIDsFn(ctx, videoID)
}

func (r *CommentReader) FindComments(ctx context.Context, filter ytcomments.CommentFilter) ([]*ytcomments.Comment, error) {
	return r.FindCommentsFn(ctx, filter)
}
