package main

import (
	"fmt"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/crawl"
)

// sample returns the first n texts, or all of them when n is not positive.
func sample(texts []string, n int) []string {
	if n <= 0 || n >= len(texts) {
		return texts
	}
	return texts[:n]
}

// printSentiment analyzes a sample of texts and prints the label shares.
func printSentiment(deps *Dependencies, name string, texts []string, n int) error {
	if name == "" || name == AnalyzerNone {
		return nil
	}

	texts = sample(texts, n)
	if len(texts) == 0 {
		fmt.Fprintln(deps.Stdout, "No comments to analyze")
		return nil
	}

	analyzer, err := deps.NewAnalyzer(name)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ytcomments.ErrorMessage(err))
		return err
	}

	report, err := analyzer.Analyze(deps.Ctx, texts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ytcomments.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Sentiment of %s (%s, %d classified):\n", crawl.FormatComments(len(texts)), name, report.Total)
	fmt.Fprintf(deps.Stdout, "Positive: %s\n", crawl.FormatPercent(report.Ratio(ytcomments.SentimentPositive)))
	fmt.Fprintf(deps.Stdout, "Negative: %s\n", crawl.FormatPercent(report.Ratio(ytcomments.SentimentNegative)))
	fmt.Fprintf(deps.Stdout, "Neutral: %s\n", crawl.FormatPercent(report.Ratio(ytcomments.SentimentNeutral)))
	return nil
}
