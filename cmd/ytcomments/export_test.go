package main

import (
	"context"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/sqlite"
)

// StoreBatch runs the database step of batch --format sqlite for one video.
func StoreBatch(ctx context.Context, deps *Dependencies, db *sqlite.DB, dir, videoID string, comments []*ytcomments.Comment, partial bool) error {
	r := &batchRun{
		cmd:  &BatchCmd{OutputDir: dir, Format: "sqlite"},
		deps: deps,
		db:   db,
	}
	return r.store(ctx, videoID, comments, partial)
}
