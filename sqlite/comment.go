package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/ytcomments"
	"github.com/google/uuid"
)

// Crawl statuses recorded when a CommentWriter commits.
const (
	StatusDone    = "done"
	StatusPartial = "partial"
)

// Compile-time interface verification.
var (
	_ ytcomments.CommentWriter = (*CommentWriter)(nil)
	_ ytcomments.CommentReader = (*CommentService)(nil)
)

// hashText computes the xxHash of a comment text as a hex string.
func hashText(text string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(text))
	return hex.EncodeToString(b)
}

// CommentWriter stores the comments of one crawl in a single transaction.
// Nothing is visible to other connections until Commit.
//
// The database allows one connection, so the DB must not be queried
// outside the writer while a CommentWriter is open.
type CommentWriter struct {
	tx       *sql.Tx
	videoID  string
	crawlID  string
	status   string
	position int
	n        int
}

// NewCommentWriter begins a transaction and records a new crawl of videoID.
// Positions continue after the comments already stored for the video.
func NewCommentWriter(ctx context.Context, db *DB, videoID string) (*CommentWriter, error) {
	if videoID == "" {
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "video ID required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	w := &CommentWriter{
		tx:      tx,
		videoID: videoID,
		crawlID: uuid.New().String(),
		status:  StatusDone,
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM comments WHERE video_id = ?
	`, videoID).Scan(&w.position); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO crawls (id, video_id, started_at) VALUES (?, ?, ?)
	`, w.crawlID, videoID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return w, nil
}

// CrawlID returns the generated ID of the crawl row.
func (w *CommentWriter) CrawlID() string {
	return w.crawlID
}

// SetStatus sets the status recorded on Commit. Defaults to StatusDone.
func (w *CommentWriter) SetStatus(status string) {
	w.status = status
}

// WriteComment stores a comment. A comment already stored for the video is
// left unchanged.
func (w *CommentWriter) WriteComment(ctx context.Context, c *ytcomments.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}

	res, err := w.tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO comments (video_id, id, author, text, time, text_hash, position, crawl_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.videoID, c.ID, c.Author, c.Text, c.Time, hashText(c.Text), w.position, w.crawlID)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		w.position++
		w.n++
	}
	return nil
}

// Commit finalizes the crawl row and commits the transaction.
func (w *CommentWriter) Commit() error {
	if _, err := w.tx.Exec(`
		UPDATE crawls SET finished_at = ?, status = ?, comments = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), w.status, w.n, w.crawlID); err != nil {
		_ = w.tx.Rollback()
		return err
	}
	return w.tx.Commit()
}

// Abort rolls the transaction back, discarding the crawl.
func (w *CommentWriter) Abort() error {
	err := w.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

// CommentService reads stored comments.
type CommentService struct {
	db *DB
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *DB) *CommentService {
	return &CommentService{db: db}
}

// CommentIDs returns the IDs stored for a video.
func (s *CommentService) CommentIDs(ctx context.Context, videoID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM comments WHERE video_id = ? ORDER BY position ASC
	`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindComments retrieves comments matching the filter in crawl order.
func (s *CommentService) FindComments(ctx context.Context, filter ytcomments.CommentFilter) ([]*ytcomments.Comment, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, author, text, time FROM comments WHERE 1=1")

	if filter.VideoID != nil {
		query.WriteString(" AND video_id = ?")
		args = append(args, *filter.VideoID)
	}

	query.WriteString(" ORDER BY video_id ASC, position ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*ytcomments.Comment
	for rows.Next() {
		var c ytcomments.Comment
		if err := rows.Scan(&c.ID, &c.Author, &c.Text, &c.Time); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
