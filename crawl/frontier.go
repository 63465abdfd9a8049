package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/ytcomments/bloom"
)

// Frontier is a FIFO queue of video IDs for batch crawls. IDs are
// deduplicated with a Bloom filter, so a false positive may rarely drop an
// ID that was never queued. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a Frontier sized for n expected IDs with the given
// false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewFilter(n, fpRate),
	}
}

// Push queues a video ID. Surrounding whitespace is ignored.
// Returns false for empty or already queued IDs.
func (f *Frontier) Push(videoID string) bool {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen.TestAndAdd(videoID) {
		return false
	}
	f.queue = append(f.queue, videoID)
	return true
}

// Pop returns the oldest queued ID.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	id := f.queue[0]
	f.queue = f.queue[1:]
	return id, true
}

// Len returns the number of queued IDs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the ID has been queued before.
func (f *Frontier) Seen(videoID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(strings.TrimSpace(videoID))
}
