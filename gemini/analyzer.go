// Package gemini implements ytcomments.SentimentAnalyzer with the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/ytcomments"
	"google.golang.org/genai"
)

const (
	// Model labels the comments.
	Model = "gemini-2.5-flash"

	// DefaultBatchTokens bounds the comment text sent in one request.
	DefaultBatchTokens = 8000

	// DefaultBatchSize bounds the number of comments sent in one request.
	DefaultBatchSize = 100
)

// Ensure Analyzer implements ytcomments.SentimentAnalyzer at compile time.
var _ ytcomments.SentimentAnalyzer = (*Analyzer)(nil)

// Analyzer labels whole comments with a language model. Its report counts
// comments, not words.
type Analyzer struct {
	client      *genai.Client
	counter     ytcomments.TokenCounter
	batchTokens int
	batchSize   int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTokenCounter sizes batches by token count instead of comment count alone.
func WithTokenCounter(tc ytcomments.TokenCounter, maxTokens int) Option {
	return func(a *Analyzer) {
		a.counter = tc
		if maxTokens > 0 {
			a.batchTokens = maxTokens
		}
	}
}

// WithBatchSize sets the maximum number of comments per request.
func WithBatchSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client *genai.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:      client,
		batchTokens: DefaultBatchTokens,
		batchSize:   DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze labels every text and counts the labels.
func (a *Analyzer) Analyze(ctx context.Context, texts []string) (*ytcomments.SentimentReport, error) {
	report := &ytcomments.SentimentReport{}
	if len(texts) == 0 {
		return report, nil
	}
	if a.client == nil {
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "gemini client required")
	}

	batches, err := SplitBatches(ctx, a.counter, texts, a.batchTokens, a.batchSize)
	if err != nil {
		return nil, err
	}

	for _, batch := range batches {
		labels, err := a.label(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, l := range labels {
			report.Add(l)
		}
	}
	return report, nil
}

func (a *Analyzer) label(ctx context.Context, batch []string) ([]ytcomments.Sentiment, error) {
	result, err := a.client.Models.GenerateContent(ctx, Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(batch)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ytcomments.Errorf(ytcomments.EINTERNAL, "gemini returned nil result")
	}
	return ParseLabels(result.Text(), len(batch))
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You classify the sentiment of video comments. For every numbered comment answer with one line containing only its number and one label: positive, negative or neutral. Do not add anything else.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt numbers the comments one per line. Newlines inside a
// comment are flattened so numbering stays unambiguous.
func BuildUserPrompt(texts []string) string {
	var sb strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.Join(strings.Fields(text), " "))
	}
	return sb.String()
}

// ParseLabels reads one label per non-empty line of a model answer. Leading
// numbering is ignored and unknown labels count as neutral. The number of
// labels must match the number of comments sent.
func ParseLabels(answer string, want int) ([]ytcomments.Sentiment, error) {
	var labels []ytcomments.Sentiment
	for line := range strings.Lines(answer) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		labels = append(labels, parseLabel(line))
	}
	if len(labels) != want {
		return nil, ytcomments.Errorf(ytcomments.EMALFORMED, "expected %d labels, got %d", want, len(labels))
	}
	return labels, nil
}

func parseLabel(line string) ytcomments.Sentiment {
	line = strings.TrimLeft(line, "0123456789.):- \t")
	line = strings.ToLower(strings.Trim(line, " *`\"'."))
	switch {
	case strings.HasPrefix(line, "pos"):
		return ytcomments.SentimentPositive
	case strings.HasPrefix(line, "neg"):
		return ytcomments.SentimentNegative
	default:
		return ytcomments.SentimentNeutral
	}
}

// SplitBatches groups texts into requests of at most maxSize comments and,
// when tc is set, at most maxTokens tokens. A text larger than maxTokens is
// sent on its own.
func SplitBatches(ctx context.Context, tc ytcomments.TokenCounter, texts []string, maxTokens, maxSize int) ([][]string, error) {
	if maxSize <= 0 {
		maxSize = DefaultBatchSize
	}

	var batches [][]string
	var current []string
	tokens := 0
	for _, text := range texts {
		n := 0
		if tc != nil {
			var err error
			if n, err = tc.CountTokens(ctx, text); err != nil {
				return nil, fmt.Errorf("count tokens: %w", err)
			}
		}

		full := len(current) >= maxSize || (tc != nil && tokens+n > maxTokens)
		if full && len(current) > 0 {
			batches = append(batches, current)
			current, tokens = nil, 0
		}
		current = append(current, text)
		tokens += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}
