package ytcomments

import "context"

// Sentiment is a classification label.
type Sentiment string

// Sentiment labels.
const (
	SentimentPositive Sentiment = "pos"
	SentimentNegative Sentiment = "neg"
	SentimentNeutral  Sentiment = "neu"
)

// SentimentReport counts classified units per label. What a unit is depends
// on the analyzer: words for a vocabulary classifier, whole comments for a
// language model.
type SentimentReport struct {
	Positive int
	Negative int
	Neutral  int
	Total    int
}

// Add counts one unit with the given label.
func (r *SentimentReport) Add(s Sentiment) {
	switch s {
	case SentimentPositive:
		r.Positive++
	case SentimentNegative:
		r.Negative++
	default:
		r.Neutral++
	}
	r.Total++
}

// Ratio returns the share of units labelled s, or 0 for an empty report.
func (r *SentimentReport) Ratio(s Sentiment) float64 {
	if r.Total == 0 {
		return 0
	}
	var n int
	switch s {
	case SentimentPositive:
		n = r.Positive
	case SentimentNegative:
		n = r.Negative
	default:
		n = r.Neutral
	}
	return float64(n) / float64(r.Total)
}

// SentimentAnalyzer summarises the sentiment of a set of comment texts.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, texts []string) (*SentimentReport, error)
}

// TokenCounter counts the model tokens in a text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
