package ytcomments

import "context"

// Comment is a single comment or reply. ID is the identity; the other
// fields are display payload copied verbatim from the page.
type Comment struct {
	ID     string `json:"cid"`
	Text   string `json:"text"`
	Time   string `json:"time"`
	Author string `json:"author"`
}

// Validate returns an error if the comment contains invalid fields.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "comment ID required")
	}
	return nil
}

// ReplyGroup points at a set of replies that has not been fetched yet.
type ReplyGroup struct {
	ID string
}

// CommentWriter persists emitted comments with atomic semantics.
// WriteComment stages a comment; Commit makes all staged comments permanent;
// Abort discards them.
type CommentWriter interface {
	WriteComment(ctx context.Context, c *Comment) error
	Commit() error
	Abort() error
}

// CommentFilter represents a filter passed to FindComments.
type CommentFilter struct {
	VideoID *string

	// Limit caps the number of comments returned. Zero means no limit.
	Limit int
}

// CommentReader reads back comments persisted by a CommentWriter.
type CommentReader interface {
	// CommentIDs returns the IDs stored for a video, used to resume a crawl.
	// A store without the video returns an empty list.
	CommentIDs(ctx context.Context, videoID string) ([]string, error)

	// FindComments returns stored comments in crawl order.
	FindComments(ctx context.Context, filter CommentFilter) ([]*Comment, error)
}
