package mock

import (
	"iter"

	"github.com/fwojciec/ytcomments"
)

var _ ytcomments.CommentExtractor = (*CommentExtractor)(nil)

// CommentExtractor is a mock implementation of ytcomments.CommentExtractor.
type CommentExtractor struct {
	CommentsFn    func(html string) iter.Seq[*ytcomments.Comment]
	ReplyGroupsFn func(html string) iter.Seq[ytcomments.ReplyGroup]
}

func (e *CommentExtractor) Comments(html string) iter.Seq[*ytcomments.Comment] {
	return e.CommentsFn(html)
}

func (e *CommentExtractor) ReplyGroups(html string) iter.Seq[ytcomments.ReplyGroup] {
	return e.ReplyGroupsFn(html)
}
