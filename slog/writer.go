package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Ensure LoggingWriter implements ytcomments.CommentWriter.
var _ ytcomments.CommentWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps a CommentWriter and logs how a crawl's output ends.
// Individual writes are only logged when they fail.
type LoggingWriter struct {
	next    ytcomments.CommentWriter
	logger  *slog.Logger
	dest    string
	written int
	begin   time.Time
}

// NewLoggingWriter creates a new LoggingWriter for output going to dest.
func NewLoggingWriter(next ytcomments.CommentWriter, dest string, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger, dest: dest, begin: time.Now()}
}

// WriteComment delegates to the wrapped writer.
func (w *LoggingWriter) WriteComment(ctx context.Context, c *ytcomments.Comment) error {
	err := w.next.WriteComment(ctx, c)
	if err != nil {
		w.logger.Error("write comment", "dest", w.dest, "cid", c.ID, "err", err)
		return err
	}
	w.written++
	return nil
}

// Commit delegates to the wrapped writer and logs the operation.
func (w *LoggingWriter) Commit() (err error) {
	defer func() {
		w.logger.Info("commit output",
			"dest", w.dest,
			"count", w.written,
			"duration", time.Since(w.begin),
			"err", err,
		)
	}()
	return w.next.Commit()
}

// Abort delegates to the wrapped writer and logs the operation.
func (w *LoggingWriter) Abort() (err error) {
	defer func() {
		w.logger.Info("abort output",
			"dest", w.dest,
			"count", w.written,
			"err", err,
		)
	}()
	return w.next.Abort()
}
