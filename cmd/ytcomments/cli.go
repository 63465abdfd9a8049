package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Analyzer names accepted by --sentiment and --analyzer.
const (
	AnalyzerNone   = "none"
	AnalyzerBayes  = "bayes"
	AnalyzerGemini = "gemini"
)

// FetcherConfig holds the per-crawl HTTP settings.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Debug wires the logging decorators around the services.
	Debug bool

	// NewFetcher creates a fetcher with a fresh session. Every crawl needs
	// its own.
	NewFetcher func(cfg FetcherConfig) ytcomments.PageFetcher

	Extractor ytcomments.CommentExtractor

	// NewAnalyzer returns the sentiment analyzer with the given name.
	NewAnalyzer func(name string) (ytcomments.SentimentAnalyzer, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug bool `help:"Log requests and timings to stderr"`

	Fetch   FetchCmd   `cmd:"" default:"withargs" help:"Download the comments of one video (default command)"`
	Batch   BatchCmd   `cmd:"" help:"Download the comments of several videos in parallel"`
	Analyze AnalyzeCmd `cmd:"" help:"Report the sentiment of downloaded comments"`
}

// CrawlFlags are the crawl settings shared by fetch and batch.
type CrawlFlags struct {
	Limit      int           `short:"l" help:"Stop after this many comments per video (0 = no limit)"`
	Retries    int           `default:"10" help:"Attempts per AJAX request"`
	RetryDelay time.Duration `default:"20s" help:"Wait between attempts"`
	Pace       time.Duration `default:"1s" help:"Wait between successful AJAX requests"`
	UserAgent  string        `name:"user-agent" help:"User-Agent header (default: desktop Chrome)"`
	Timeout    time.Duration `default:"30s" help:"HTTP timeout per request"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	CrawlFlags `embed:""`

	YoutubeID string `short:"y" name:"youtubeid" required:"" help:"ID of the video to download the comments for"`
	Output    string `short:"o" required:"" type:"path" help:"Output file: JSON lines, or SQLite for .db and .sqlite"`
	Resume    bool   `help:"Keep comments already in the output and only download new ones"`
	Sentiment string `enum:"none,bayes,gemini" default:"bayes" help:"Sentiment report after the download (none, bayes, gemini)"`
	Sample    int    `default:"20" help:"Comments used for the sentiment report (0 = all)"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	CrawlFlags `embed:""`

	IDs         []string `arg:"" name:"ids" help:"Video IDs"`
	OutputDir   string   `required:"" type:"path" help:"Directory for the output files"`
	Format      string   `enum:"jsonl,sqlite" default:"jsonl" help:"One JSONL file per video, or one comments.db"`
	Concurrency int      `short:"c" default:"2" help:"Videos crawled at the same time"`
	RPS         float64  `name:"rps" default:"1" help:"Requests per second across all crawls (0 = unlimited)"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	Path     string `arg:"" type:"existingfile" help:"JSONL or SQLite output of fetch"`
	Video    string `help:"Only analyze this video (SQLite only)"`
	Analyzer string `enum:"bayes,gemini" default:"bayes" help:"Sentiment analyzer (bayes, gemini)"`
	Sample   int    `default:"20" help:"Comments to analyze (0 = all)"`
}
