package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/bayes"
	"github.com/fwojciec/ytcomments/gemini"
	"github.com/fwojciec/ytcomments/goquery"
	ythttp "github.com/fwojciec/ytcomments/http"
	ytslog "github.com/fwojciec/ytcomments/slog"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// BaseURL overrides the site the comments are downloaded from.
	// Set before calling Run().
	BaseURL *url.URL

	// Getenv looks up environment variables.
	Getenv func(string) string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ytcomments"),
		kong.Description("Download video comments without using the API"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ytcomments --help' to see available commands")
	}

	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Debug = cli.Debug
	deps.Logger = slog.New(slog.DiscardHandler)
	if cli.Debug {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var extractor ytcomments.CommentExtractor = goquery.NewExtractor()
	if cli.Debug {
		extractor = ytslog.NewLoggingExtractor(extractor, deps.Logger)
	}
	deps.Extractor = extractor

	deps.NewFetcher = func(cfg FetcherConfig) ytcomments.PageFetcher {
		var f ytcomments.PageFetcher = ythttp.NewFetcher(
			ythttp.WithBaseURL(m.BaseURL),
			ythttp.WithUserAgent(cfg.UserAgent),
			ythttp.WithTimeout(cfg.Timeout),
		)
		if cli.Debug {
			f = ytslog.NewLoggingFetcher(f, deps.Logger)
		}
		return f
	}

	deps.NewAnalyzer = func(name string) (ytcomments.SentimentAnalyzer, error) {
		a, err := m.newAnalyzer(ctx, name, deps)
		if err != nil {
			return nil, err
		}
		if cli.Debug {
			a = ytslog.NewLoggingAnalyzer(a, name, deps.Logger)
		}
		return a, nil
	}

	return kongCtx.Run(deps)
}

func (m *Main) newAnalyzer(ctx context.Context, name string, deps *Dependencies) (ytcomments.SentimentAnalyzer, error) {
	switch name {
	case AnalyzerBayes:
		return bayes.NewAnalyzer(bayes.DefaultVocabulary()), nil
	case AnalyzerGemini:
		apiKey := m.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(deps.Stderr, "Hint: Get an API key at https://aistudio.google.com/apikey")
			return nil, ytcomments.Errorf(ytcomments.EINVALID, "GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		var opts []gemini.Option
		if tc, err := gemini.NewTokenCounter(gemini.Model); err == nil {
			opts = append(opts, gemini.WithTokenCounter(tc, gemini.DefaultBatchTokens))
		} else {
			deps.Logger.Warn("token counter unavailable, batching by count", "err", err)
		}
		return gemini.NewAnalyzer(client, opts...), nil
	default:
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "unknown analyzer %q", name)
	}
}
