package slog

import (
	"iter"
	"log/slog"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Ensure LoggingExtractor implements ytcomments.CommentExtractor.
var _ ytcomments.CommentExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a CommentExtractor and logs how many items each
// fragment produced once its sequence has been consumed.
type LoggingExtractor struct {
	next   ytcomments.CommentExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next ytcomments.CommentExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Comments delegates to the wrapped extractor.
func (e *LoggingExtractor) Comments(html string) iter.Seq[*ytcomments.Comment] {
	return counted(e.next.Comments(html), func(n int, d time.Duration) {
		e.logger.Info("extract comments", "bytes", len(html), "count", n, "duration", d)
	})
}

// ReplyGroups delegates to the wrapped extractor.
func (e *LoggingExtractor) ReplyGroups(html string) iter.Seq[ytcomments.ReplyGroup] {
	return counted(e.next.ReplyGroups(html), func(n int, d time.Duration) {
		e.logger.Info("extract reply groups", "bytes", len(html), "count", n, "duration", d)
	})
}

func counted[T any](seq iter.Seq[T], done func(n int, d time.Duration)) iter.Seq[T] {
	return func(yield func(T) bool) {
		begin := time.Now()
		n := 0
		defer func() { done(n, time.Since(begin)) }()
		for v := range seq {
			n++
			if !yield(v) {
				return
			}
		}
	}
}
