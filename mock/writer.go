package mock

import (
	"context"

	"github.com/fwojciec/ytcomments"
)

var _ ytcomments.CommentWriter = (*CommentWriter)(nil)

// CommentWriter is a mock implementation of ytcomments.CommentWriter.
type CommentWriter struct {
	WriteCommentFn func(ctx context.Context, c *ytcomments.Comment) error
	CommitFn       func() error
	AbortFn        func() error
}

func (w *CommentWriter) WriteComment(ctx context.Context, c *ytcomments.Comment) error {
	return w.WriteCommentFn(ctx, c)
}

func (w *CommentWriter) Commit() error {
	return w.CommitFn()
}

func (w *CommentWriter) Abort() error {
	return w.AbortFn()
}
