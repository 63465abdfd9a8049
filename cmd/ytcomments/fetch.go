package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/crawl"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	ctx := deps.Ctx

	out, err := openOutput(ctx, deps, c.Output, c.YoutubeID, c.Resume)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ytcomments.ErrorMessage(err))
		return err
	}
	defer out.Close()

	fetcher := deps.NewFetcher(FetcherConfig{UserAgent: c.UserAgent, Timeout: c.Timeout})
	defer closeFetcher(fetcher)

	var result *crawl.Result
	crawler := crawl.NewCrawler(
		fetcher,
		deps.Extractor,
		append(c.crawlOptions(deps),
			crawl.WithSeen(out.Seen),
			crawl.WithProgress(func(e crawl.ProgressEvent) {
				if e.Type == crawl.ProgressFinished {
					result = e.Result
				}
			}),
		)...,
	)

	if len(out.Seen) > 0 {
		fmt.Fprintf(deps.Stdout, "Resuming with %s already stored\n", crawl.FormatComments(len(out.Seen)))
	}
	fmt.Fprintln(deps.Stdout, "Downloading Youtube comments for video:", c.YoutubeID)

	var texts []string
	count := 0
	var crawlErr error
	for comment, err := range crawler.Crawl(ctx, c.YoutubeID) {
		if err != nil {
			crawlErr = err
			break
		}
		if err := out.Writer.WriteComment(ctx, comment); err != nil {
			_ = out.Writer.Abort()
			fmt.Fprintf(deps.Stderr, "\nerror: %s\n", ytcomments.ErrorMessage(err))
			return err
		}
		texts = append(texts, comment.Text)
		count++
		fmt.Fprintf(deps.Stdout, "Downloaded %d comment(s)\r", count)
	}

	if crawlErr != nil && count == 0 {
		_ = out.Writer.Abort()
		fmt.Fprintf(deps.Stderr, "error: %s\n", crawlErrorMessage(crawlErr))
		return crawlErr
	}

	if crawlErr != nil || !complete(result) {
		out.MarkPartial()
	}
	if err := out.Writer.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "\nerror: %s\n", ytcomments.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "\nDownload completed: %s\n", crawl.Summary(result))
	if crawlErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s (kept %s)\n", crawlErrorMessage(crawlErr), crawl.FormatComments(count))
		return crawlErr
	}

	return printSentiment(deps, c.Sentiment, texts, c.Sample)
}

// crawlOptions translates the shared flags into crawler options.
func (f *CrawlFlags) crawlOptions(deps *Dependencies) []crawl.Option {
	return []crawl.Option{
		crawl.WithRetries(f.Retries),
		crawl.WithRetryDelay(f.RetryDelay),
		crawl.WithPaceDelay(f.Pace),
		crawl.WithLimit(f.Limit),
		crawl.WithLogger(func(format string, args ...any) {
			fmt.Fprintf(deps.Stderr, format+"\n", args...)
		}),
	}
}

// complete reports whether a crawl gathered the whole thread: it reached
// DONE without giving up on a phase or stopping at the limit.
func complete(r *crawl.Result) bool {
	if r == nil || r.Phase != ytcomments.PhaseDone {
		return false
	}
	return !r.PaginationExhausted && !r.RepliesExhausted && !r.LimitReached && !r.Stopped
}

// closeFetcher releases the connections held by a fetcher's session.
func closeFetcher(f ytcomments.PageFetcher) {
	if c, ok := f.(io.Closer); ok {
		_ = c.Close()
	}
}

// crawlErrorMessage describes a fatal crawl error for the user.
func crawlErrorMessage(err error) string {
	if ytcomments.ErrorCode(err) == ytcomments.EINTERNAL {
		return err.Error()
	}
	return ytcomments.ErrorMessage(err)
}
