package mock

import (
	"context"

	"github.com/fwojciec/ytcomments"
)

var _ ytcomments.SentimentAnalyzer = (*SentimentAnalyzer)(nil)

// SentimentAnalyzer is a mock implementation of ytcomments.SentimentAnalyzer.
type SentimentAnalyzer struct {
	AnalyzeFn func(ctx context.Context, texts []string) (*ytcomments.SentimentReport, error)
}

func (a *SentimentAnalyzer) Analyze(ctx context.Context, texts []string) (*ytcomments.SentimentReport, error) {
	return a.AnalyzeFn(ctx, texts)
}
