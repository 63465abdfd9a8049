package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/crawl"
	"github.com/fwojciec/ytcomments/fs"
	"github.com/fwojciec/ytcomments/sqlite"
	"golang.org/x/sync/errgroup"
)

// batchDBName is the database written by batch --format sqlite.
const batchDBName = "comments.db"

// batchRun is the shared state of one batch command.
type batchRun struct {
	cmd     *BatchCmd
	deps    *Dependencies
	limiter *crawl.DomainLimiter

	mu     sync.Mutex // guards stdout, db and failed
	db     *sqlite.DB
	failed int
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	frontier := crawl.NewFrontier(uint(len(c.IDs)), 0.001)
	for _, id := range c.IDs {
		if frontier.Push(id) {
			continue
		}
		if frontier.Seen(id) {
			fmt.Fprintf(deps.Stderr, "skip %q: already queued\n", id)
		} else {
			fmt.Fprintf(deps.Stderr, "skip %q: empty\n", id)
		}
	}
	total := frontier.Len()
	if total == 0 {
		fmt.Fprintln(deps.Stderr, "error: no video IDs")
		return ytcomments.Errorf(ytcomments.EINVALID, "no video IDs")
	}

	if err := os.MkdirAll(c.OutputDir, 0755); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	run := &batchRun{
		cmd:     c,
		deps:    deps,
		limiter: crawl.NewDomainLimiter(c.RPS),
	}
	if c.Format == "sqlite" {
		run.db = sqlite.NewDB(filepath.Join(c.OutputDir, batchDBName))
		if err := run.db.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		defer run.db.Close()
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(concurrency)
	for {
		id, ok := frontier.Pop()
		if !ok {
			break
		}
		g.Go(func() error {
			return run.video(ctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Finished %d video(s), %d failed\n", total, run.failed)
	if run.failed > 0 {
		return ytcomments.Errorf(ytcomments.EINTERNAL, "%d of %d videos failed", run.failed, total)
	}
	return nil
}

// video crawls and stores one video. Only a canceled context stops the
// other crawls; any other failure is reported and counted.
func (r *batchRun) video(ctx context.Context, id string) error {
	c := r.cmd
	fetcher := r.deps.NewFetcher(FetcherConfig{UserAgent: c.UserAgent, Timeout: c.Timeout})
	defer closeFetcher(fetcher)

	var result *crawl.Result
	crawler := crawl.NewCrawler(fetcher, r.deps.Extractor, append(c.crawlOptions(r.deps),
		crawl.WithRateLimiter(r.limiter),
		crawl.WithLogger(func(format string, args ...any) {
			r.printf(r.deps.Stderr, "%s: "+format+"\n", append([]any{id}, args...)...)
		}),
		crawl.WithProgress(func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFinished {
				result = e.Result
			}
		}),
	)...)

	var stored int
	var crawlErr, err error
	if r.db != nil {
		stored, crawlErr, err = r.collect(ctx, crawler, id)
	} else {
		stored, crawlErr, err = r.stream(ctx, crawler, id)
	}

	if ctx.Err() != nil && stored == 0 {
		return ctx.Err()
	}
	if crawlErr != nil && stored == 0 {
		r.fail("%s: error: %s\n", id, crawlErrorMessage(crawlErr))
		return nil
	}
	if err != nil {
		r.fail("%s: error: %s\n", id, ytcomments.ErrorMessage(err))
		return nil
	}

	r.printf(r.deps.Stdout, "%s: %s\n", id, crawl.Summary(result))
	if crawlErr != nil {
		r.fail("%s: error: %s\n", id, crawlErrorMessage(crawlErr))
	}
	return nil
}

// stream writes the comments of one video to its own JSONL file as the
// crawl produces them. A crawl that fails before its first comment leaves
// no file behind.
func (r *batchRun) stream(ctx context.Context, crawler *crawl.Crawler, id string) (stored int, crawlErr, err error) {
	path := filepath.Join(r.cmd.OutputDir, id+".jsonl")
	w, err := fs.NewJSONLWriter(path)
	if err != nil {
		return 0, nil, err
	}
	out := r.deps.writer(w, path)

	for comment, err := range crawler.Crawl(ctx, id) {
		if err != nil {
			crawlErr = err
			break
		}
		if err := out.WriteComment(ctx, comment); err != nil {
			_ = out.Abort()
			return stored, nil, err
		}
		stored++
	}

	if stored == 0 && crawlErr != nil {
		_ = out.Abort()
		return 0, crawlErr, nil
	}
	return stored, crawlErr, out.Commit()
}

// collect runs one crawl to the end and stores it in the shared database.
func (r *batchRun) collect(ctx context.Context, crawler *crawl.Crawler, id string) (stored int, crawlErr, err error) {
	comments, result, crawlErr := crawler.CrawlAll(ctx, id)
	if len(comments) == 0 {
		return 0, crawlErr, nil
	}
	return len(comments), crawlErr, r.store(ctx, id, comments, crawlErr != nil || !complete(result))
}

// store writes the comments of one video to the shared database and
// commits them. Gathered comments are kept even after the crawl was
// canceled, so the writes do not inherit the cancellation.
func (r *batchRun) store(ctx context.Context, id string, comments []*ytcomments.Comment, partial bool) error {
	ctx = context.WithoutCancel(ctx)

	// The database has one connection; writers take turns.
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := openSQLiteOutput(ctx, r.deps, r.db, filepath.Join(r.cmd.OutputDir, batchDBName), id, false, nil)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		if err := out.Writer.WriteComment(ctx, comment); err != nil {
			_ = out.Writer.Abort()
			return err
		}
	}
	if partial {
		out.MarkPartial()
	}
	return out.Writer.Commit()
}

func (r *batchRun) fail(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	fmt.Fprintf(r.deps.Stderr, format, args...)
}

func (r *batchRun) printf(w io.Writer, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}
