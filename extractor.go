package ytcomments

import "iter"

// CommentExtractor pulls comments and reply group references out of a
// page fragment. Implementations are pure: the same fragment always yields
// the same sequences, and a fragment without matches yields empty sequences.
type CommentExtractor interface {
	// Comments returns the comments in document order.
	Comments(html string) iter.Seq[*Comment]

	// ReplyGroups returns the reply groups whose children are not part of
	// the fragment.
	ReplyGroups(html string) iter.Seq[ReplyGroup]
}
