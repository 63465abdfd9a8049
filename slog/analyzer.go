package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Ensure LoggingAnalyzer implements ytcomments.SentimentAnalyzer.
var _ ytcomments.SentimentAnalyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps a SentimentAnalyzer with debug logging.
type LoggingAnalyzer struct {
	next   ytcomments.SentimentAnalyzer
	name   string
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next ytcomments.SentimentAnalyzer, name string, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, name: name, logger: logger}
}

// Analyze delegates to the wrapped analyzer and logs the operation.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, texts []string) (report *ytcomments.SentimentReport, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"analyzer", a.name,
			"texts", len(texts),
		}
		if report != nil {
			attrs = append(attrs,
				"pos", report.Positive,
				"neg", report.Negative,
				"neu", report.Neutral,
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		a.logger.Info("sentiment analysis", attrs...)
	}(time.Now())
	return a.next.Analyze(ctx, texts)
}
