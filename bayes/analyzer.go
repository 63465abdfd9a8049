// Package bayes implements ytcomments.SentimentAnalyzer with a multinomial
// Naive Bayes word classifier trained on a fixed vocabulary.
package bayes

import (
	"context"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/fwojciec/ytcomments"
	"github.com/kljensen/snowball/english"
)

// Ensure Analyzer implements ytcomments.SentimentAnalyzer at compile time.
var _ ytcomments.SentimentAnalyzer = (*Analyzer)(nil)

// labels fixes the iteration order so ties resolve the same way every run.
var labels = []ytcomments.Sentiment{
	ytcomments.SentimentNeutral,
	ytcomments.SentimentPositive,
	ytcomments.SentimentNegative,
}

// Analyzer classifies the words of comments. Its report counts words.
type Analyzer struct {
	stopwords map[string]struct{}
	counts    map[ytcomments.Sentiment]map[string]int
	totals    map[ytcomments.Sentiment]int
	priors    map[ytcomments.Sentiment]float64
	vocab     map[string]struct{}
}

// NewAnalyzer trains an Analyzer on v.
func NewAnalyzer(v Vocabulary) *Analyzer {
	a := &Analyzer{
		stopwords: make(map[string]struct{}, len(v.Stopwords)),
		counts:    make(map[ytcomments.Sentiment]map[string]int),
		totals:    make(map[ytcomments.Sentiment]int),
		priors:    make(map[ytcomments.Sentiment]float64),
		vocab:     make(map[string]struct{}),
	}
	for _, w := range v.Stopwords {
		a.stopwords[w] = struct{}{}
	}

	examples := 0
	for _, label := range labels {
		a.counts[label] = make(map[string]int)
		for _, w := range v.Words[label] {
			stem := Stem(w)
			a.counts[label][stem]++
			a.totals[label]++
			a.vocab[stem] = struct{}{}
			examples++
		}
	}
	for _, label := range labels {
		if examples > 0 {
			a.priors[label] = float64(len(v.Words[label])) / float64(examples)
		}
	}
	return a
}

// Analyze classifies every word left after cleaning the texts.
func (a *Analyzer) Analyze(ctx context.Context, texts []string) (*ytcomments.SentimentReport, error) {
	report := &ytcomments.SentimentReport{}
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, w := range a.Clean(text) {
			report.Add(a.Classify(w))
		}
	}
	return report, nil
}

// Clean reduces a comment to stemmed words: anything but ASCII letters
// separates words, stopwords are dropped.
func (a *Analyzer) Clean(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
	cleaned := words[:0]
	for _, w := range words {
		if _, ok := a.stopwords[w]; ok {
			continue
		}
		cleaned = append(cleaned, Stem(w))
	}
	return slices.Clip(cleaned)
}

// Classify labels one stemmed word. Words outside the vocabulary are neutral.
func (a *Analyzer) Classify(word string) ytcomments.Sentiment {
	if _, ok := a.vocab[word]; !ok {
		return ytcomments.SentimentNeutral
	}

	v := float64(len(a.vocab))
	best := ytcomments.SentimentNeutral
	bestScore := math.Inf(-1)
	for _, label := range labels {
		if a.priors[label] == 0 {
			continue
		}
		likelihood := (float64(a.counts[label][word]) + 1) / (float64(a.totals[label]) + v)
		score := math.Log(a.priors[label]) + math.Log(likelihood)
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best
}

// Stem returns the English stem of a lower-case word.
func Stem(word string) string {
	return english.Stem(word, true)
}
