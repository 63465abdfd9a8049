package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fwojciec/ytcomments"
	"github.com/fwojciec/ytcomments/fs"
	"github.com/fwojciec/ytcomments/sqlite"
	ytslog "github.com/fwojciec/ytcomments/slog"
)

// isSQLite reports whether path names a SQLite database.
func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// output is the destination of one crawl.
type output struct {
	Writer ytcomments.CommentWriter

	// Seen holds the IDs already stored when resuming.
	Seen []string

	// partial marks the crawl as incomplete in stores that record it.
	partial func()
	close   func() error
}

// MarkPartial records that the crawl stopped before it was done.
func (o *output) MarkPartial() {
	if o.partial != nil {
		o.partial()
	}
}

// Close releases the store after Commit or Abort.
func (o *output) Close() error {
	if o.close != nil {
		return o.close()
	}
	return nil
}

// openOutput opens the writer for one video. With resume, the IDs already
// stored are loaded so the crawl skips them.
func openOutput(ctx context.Context, deps *Dependencies, path, videoID string, resume bool) (*output, error) {
	if isSQLite(path) {
		db := sqlite.NewDB(path)
		if err := db.Open(); err != nil {
			return nil, err
		}
		return openSQLiteOutput(ctx, deps, db, path, videoID, resume, db.Close)
	}

	var seen []string
	var opts []fs.WriterOption
	if resume {
		ids, err := fs.NewJSONLReader(path).CommentIDs(ctx, videoID)
		if err != nil {
			return nil, err
		}
		seen = ids
		opts = append(opts, fs.WithExisting())
	}

	w, err := fs.NewJSONLWriter(path, opts...)
	if err != nil {
		return nil, err
	}
	return &output{
		Writer: deps.writer(w, path),
		Seen:   seen,
	}, nil
}

// openSQLiteOutput starts a crawl transaction in an open database. The
// resume IDs are read before the transaction takes the only connection.
// closeFn releases the database and may be nil when the caller owns it.
func openSQLiteOutput(ctx context.Context, deps *Dependencies, db *sqlite.DB, path, videoID string, resume bool, closeFn func() error) (*output, error) {
	if closeFn == nil {
		closeFn = func() error { return nil }
	}

	var seen []string
	if resume {
		ids, err := sqlite.NewCommentService(db).CommentIDs(ctx, videoID)
		if err != nil {
			_ = closeFn()
			return nil, err
		}
		seen = ids
	}

	w, err := sqlite.NewCommentWriter(ctx, db, videoID)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	return &output{
		Writer:  deps.writer(w, path),
		Seen:    seen,
		partial: func() { w.SetStatus(sqlite.StatusPartial) },
		close:   closeFn,
	}, nil
}

// openReader opens stored comments for analysis.
func openReader(path string) (ytcomments.CommentReader, func() error, error) {
	if !isSQLite(path) {
		return fs.NewJSONLReader(path), func() error { return nil }, nil
	}
	db := sqlite.NewDB(path)
	if err := db.Open(); err != nil {
		return nil, nil, err
	}
	return sqlite.NewCommentService(db), db.Close, nil
}

// writer wraps w with logging when debug output is on.
func (deps *Dependencies) writer(w ytcomments.CommentWriter, dest string) ytcomments.CommentWriter {
	if !deps.Debug {
		return w
	}
	return ytslog.NewLoggingWriter(w, dest, deps.Logger)
}
