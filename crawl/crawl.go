// Package crawl downloads comment threads. It drives the three crawl
// phases over a ytcomments.PageFetcher, retrying and pacing requests, and
// deduplicates the comments it emits.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"time"

	"github.com/fwojciec/ytcomments"
)

// Crawler downloads the comment thread of one video at a time.
//
// A Crawler owns its fetcher and with it the HTTP session, so crawls of
// different videos that run in parallel need separate Crawlers.
type Crawler struct {
	fetcher   ytcomments.PageFetcher
	extractor ytcomments.CommentExtractor
	requester *Requester
	paceDelay time.Duration
	limit     int
	seen      []string
	logger    LogFunc
	progress  ProgressFunc
}

// NewCrawler creates a Crawler.
func NewCrawler(fetcher ytcomments.PageFetcher, extractor ytcomments.CommentExtractor, opts ...Option) *Crawler {
	cfg := newConfig(opts)
	return &Crawler{
		fetcher:   fetcher,
		extractor: extractor,
		requester: newRequester(fetcher, cfg),
		paceDelay: cfg.paceDelay,
		limit:     cfg.limit,
		seen:      cfg.seen,
		logger:    cfg.logger,
		progress:  cfg.progress,
	}
}

// Result summarises a finished crawl.
type Result struct {
	// Phase is the phase the crawl ended in. A crawl that ran out of pages,
	// gave up on a phase or stopped at the limit ends in
	// ytcomments.PhaseDone; only a fatal error leaves it in an earlier phase.
	// The flags below tell a complete crawl from a partial one.
	Phase ytcomments.Phase

	// Comments emitted per phase.
	Initial   int
	Paginated int
	Replies   int

	// Duplicates counts comments suppressed because their ID was seen.
	Duplicates int

	// Pages is the number of AJAX pages received during pagination.
	Pages int

	// ReplyGroups is the number of reply groups expanded.
	ReplyGroups int

	// PaginationExhausted and RepliesExhausted report a phase cut short
	// by a request that never succeeded.
	PaginationExhausted bool
	RepliesExhausted    bool

	// LimitReached reports that the crawl stopped at the comment cap.
	LimitReached bool

	// Stopped reports that the consumer broke out of the iterator.
	Stopped bool
}

// Total returns the number of comments emitted.
func (r *Result) Total() int {
	return r.Initial + r.Paginated + r.Replies
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	// ProgressPhase is sent when the crawl enters a phase.
	ProgressPhase ProgressType = iota
	// ProgressComment is sent for every emitted comment.
	ProgressComment
	// ProgressExhausted is sent when a phase is abandoned after a failed request.
	ProgressExhausted
	// ProgressFinished is sent once when the crawl stops for any reason.
	ProgressFinished
)

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	Phase   ytcomments.Phase
	Emitted int
	Comment *ytcomments.Comment
	Error   error
	Result  *Result
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// session is the mutable state of a single crawl.
type session struct {
	videoID      string
	sessionToken string
	cursor       string
	seen         map[string]struct{}
	groups       []ytcomments.ReplyGroup
	groupSeen    map[string]struct{}
	emitted      int
	result       Result
	yield        func(*ytcomments.Comment, error) bool
}

// Crawl returns an iterator over the unique comments of a video.
//
// Comments are produced while the crawl runs. Breaking out of the loop
// stops the crawl before its next request. A fatal error, such as a
// missing session token or a canceled context, is yielded once as the
// last element with a nil comment. Failures after the initial page only
// end the current phase.
func (c *Crawler) Crawl(ctx context.Context, videoID string) iter.Seq2[*ytcomments.Comment, error] {
	return func(yield func(*ytcomments.Comment, error) bool) {
		s := c.newSession(videoID, yield)
		defer func() {
			c.notify(ProgressEvent{
				Type:    ProgressFinished,
				Phase:   s.result.Phase,
				Emitted: s.emitted,
				Result:  &s.result,
			})
		}()

		if err := c.run(ctx, s); err != nil {
			yield(nil, err)
		}
	}
}

// CrawlAll runs a crawl to completion and collects the comments.
// On a fatal error the comments gathered so far are returned with it.
func (c *Crawler) CrawlAll(ctx context.Context, videoID string) ([]*ytcomments.Comment, *Result, error) {
	var comments []*ytcomments.Comment
	var result *Result

	progress := c.progress
	c2 := *c
	c2.progress = func(event ProgressEvent) {
		if event.Type == ProgressFinished {
			result = event.Result
		}
		if progress != nil {
			progress(event)
		}
	}

	// A fatal error is always the last element, so the loop runs to the end
	// and the finished event has been delivered by the time it exits.
	var crawlErr error
	for comment, err := range c2.Crawl(ctx, videoID) {
		if err != nil {
			crawlErr = err
			continue
		}
		comments = append(comments, comment)
	}
	return comments, result, crawlErr
}

func (c *Crawler) newSession(videoID string, yield func(*ytcomments.Comment, error) bool) *session {
	s := &session{
		videoID:   videoID,
		seen:      make(map[string]struct{}, len(c.seen)),
		groupSeen: make(map[string]struct{}),
		yield:     yield,
	}
	for _, id := range c.seen {
		s.seen[id] = struct{}{}
	}
	return s
}

// errStop ends a crawl without reporting an error to the consumer.
var errStop = errors.New("crawl stopped")

// run executes the phases in order. Running out of work, the limit and a
// stopping consumer all end in PhaseDone; a fatal error leaves the crawl in
// the phase it failed in and is returned.
func (c *Crawler) run(ctx context.Context, s *session) error {
	err := c.fetchInitial(ctx, s)
	if err == nil {
		err = c.paginate(ctx, s)
	}
	if err == nil {
		err = c.expandReplies(ctx, s)
	}
	if err != nil && !errors.Is(err, errStop) {
		return err
	}
	c.enter(s, ytcomments.PhaseDone)
	return nil
}

// fetchInitial loads the canonical page, derives the session tokens and
// emits the first batch of comments.
func (c *Crawler) fetchInitial(ctx context.Context, s *session) error {
	c.enter(s, ytcomments.PhaseInit)

	if err := c.wait(ctx); err != nil {
		return err
	}
	html, err := c.fetcher.FetchPage(ctx, s.videoID)
	if err != nil {
		return fmt.Errorf("initial page: %w", err)
	}

	cursor, err := ExtractSessionToken(html, CursorMarker, CursorOffset)
	if err != nil {
		return err
	}
	token, err := ExtractSessionToken(html, XSRFMarker, XSRFOffset)
	if err != nil {
		return err
	}
	s.cursor = cursor
	s.sessionToken = token

	c.collectGroups(s, html)
	return c.emit(ctx, s, html, &s.result.Initial)
}

// paginate follows the cursor until it runs out or a request is exhausted.
func (c *Crawler) paginate(ctx context.Context, s *session) error {
	c.enter(s, ytcomments.PhasePaginating)

	first := true
	for s.cursor != "" {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := c.requester.Do(ctx, paginationRequest(s, first))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.result.PaginationExhausted = true
			c.abandon(s, err)
			return nil
		}
		s.result.Pages++
		s.cursor = page.Cursor

		c.collectGroups(s, page.HTML)
		if err := c.emit(ctx, s, page.HTML, &s.result.Paginated); err != nil {
			return err
		}

		first = false
		if err := sleep(ctx, c.paceDelay); err != nil {
			return err
		}
	}
	return nil
}

// expandReplies fetches the children of every collected reply group.
func (c *Crawler) expandReplies(ctx context.Context, s *session) error {
	c.enter(s, ytcomments.PhaseExpandingReplies)

	for _, group := range s.groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := c.requester.Do(ctx, repliesRequest(s, group))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.result.RepliesExhausted = true
			c.abandon(s, err)
			return nil
		}
		s.result.ReplyGroups++

		if err := c.emit(ctx, s, page.HTML, &s.result.Replies); err != nil {
			return err
		}

		if err := sleep(ctx, c.paceDelay); err != nil {
			return err
		}
	}
	return nil
}

// emit hands the unseen comments of a fragment to the consumer. It returns
// errStop when the consumer stops or the limit is reached.
func (c *Crawler) emit(ctx context.Context, s *session, html string, counter *int) error {
	for comment := range c.extractor.Comments(html) {
		if _, ok := s.seen[comment.ID]; ok {
			s.result.Duplicates++
			continue
		}
		s.seen[comment.ID] = struct{}{}
		s.emitted++
		*counter++

		c.notify(ProgressEvent{
			Type:    ProgressComment,
			Phase:   s.result.Phase,
			Emitted: s.emitted,
			Comment: comment,
		})

		if !s.yield(comment, nil) {
			s.result.Stopped = true
			return errStop
		}
		if c.limit > 0 && s.emitted >= c.limit {
			s.result.LimitReached = true
			return errStop
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// collectGroups queues the reply groups of a fragment. Each group is
// expanded at most once.
func (c *Crawler) collectGroups(s *session, html string) {
	for group := range c.extractor.ReplyGroups(html) {
		if _, ok := s.groupSeen[group.ID]; ok {
			continue
		}
		s.groupSeen[group.ID] = struct{}{}
		s.groups = append(s.groups, group)
	}
}

func (c *Crawler) enter(s *session, phase ytcomments.Phase) {
	s.result.Phase = phase
	c.notify(ProgressEvent{
		Type:    ProgressPhase,
		Phase:   phase,
		Emitted: s.emitted,
	})
}

func (c *Crawler) abandon(s *session, err error) {
	if c.logger != nil {
		c.logger("  %s stopped early: %v", s.result.Phase, err)
	}
	c.notify(ProgressEvent{
		Type:    ProgressExhausted,
		Phase:   s.result.Phase,
		Emitted: s.emitted,
		Error:   err,
	})
}

// wait blocks on the shared rate limiter, if any, before the initial page.
// AJAX requests wait inside the Requester.
func (c *Crawler) wait(ctx context.Context) error {
	if c.requester.rateLimiter == nil {
		return ctx.Err()
	}
	return c.requester.rateLimiter.Wait(ctx, c.fetcher.Host())
}

func (c *Crawler) notify(event ProgressEvent) {
	if c.progress != nil {
		c.progress(event)
	}
}

// paginationRequest builds the "show more" request. The first request
// opens the sort menu instead of sending the cursor, as the site does.
func paginationRequest(s *session, first bool) *ytcomments.AJAXRequest {
	params := url.Values{}
	params.Set("action_load_comments", "1")
	params.Set("order_by_time", "True")
	params.Set("filter", s.videoID)

	form := url.Values{}
	form.Set("video_id", s.videoID)
	form.Set("session_token", s.sessionToken)

	if first {
		params.Set("order_menu", "True")
	} else {
		form.Set("page_token", s.cursor)
	}
	return &ytcomments.AJAXRequest{Params: params, Form: form}
}

// repliesRequest builds the "view all replies" request for a group.
func repliesRequest(s *session, group ytcomments.ReplyGroup) *ytcomments.AJAXRequest {
	params := url.Values{}
	params.Set("action_load_replies", "1")
	params.Set("order_by_time", "True")
	params.Set("filter", s.videoID)
	params.Set("tab", "inbox")

	form := url.Values{}
	form.Set("comment_id", group.ID)
	form.Set("video_id", s.videoID)
	form.Set("can_reply", "1")
	form.Set("session_token", s.sessionToken)

	return &ytcomments.AJAXRequest{Params: params, Form: form}
}
