package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ytcomments"
	main "github.com/fwojciec/ytcomments/cmd/ytcomments"
	"github.com/fwojciec/ytcomments/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	t.Parallel()

	t.Run("writes one file per video and skips duplicate ids", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{}
		m := newMain(site.start(t))
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", "v1", "v2", "v1", "--output-dir", dir, "--rps", "0"), &stdout, &stderr)

		require.NoError(t, err, stderr.String())
		assert.Equal(t, []string{"v1-c1", "v1-c2", "v1-c3", "v1-c4", "v1-c1-r1", "v1-c1-r2"}, readIDs(t, filepath.Join(dir, "v1.jsonl")))
		assert.Len(t, readIDs(t, filepath.Join(dir, "v2.jsonl")), 6)
		assert.Contains(t, stderr.String(), `skip "v1": already queued`)
		assert.Contains(t, stdout.String(), "v1: 6 comments")
		assert.Contains(t, stdout.String(), "v2: 6 comments")
		assert.Contains(t, stdout.String(), "Finished 2 video(s), 0 failed")
	})

	t.Run("writes all videos to one database", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{}
		m := newMain(site.start(t))
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", "v1", "v2", "v3", "--output-dir", dir, "--format", "sqlite", "-c", "3", "--rps", "0"), &stdout, &stderr)
		require.NoError(t, err, stderr.String())

		db := sqlite.NewDB(filepath.Join(dir, "comments.db"))
		require.NoError(t, db.Open())
		defer db.Close()

		ctx := context.Background()
		var comments, crawls int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&comments))
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crawls").Scan(&crawls))
		assert.Equal(t, 18, comments)
		assert.Equal(t, 3, crawls)
	})

	t.Run("reports videos that fail", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{noTokens: true}
		m := newMain(site.start(t))
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", "v1", "v2", "--output-dir", t.TempDir(), "--rps", "0"), &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "v1: error: ")
		assert.Contains(t, stderr.String(), "v2: error: ")
		assert.Contains(t, stdout.String(), "Finished 2 video(s), 2 failed")
	})

	t.Run("keeps initial comments when AJAX requests fail", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{ajaxFail: true}
		m := newMain(site.start(t))
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", "v1", "--output-dir", dir, "--rps", "0", "--retries", "1"), &stdout, &stderr)

		require.NoError(t, err, stderr.String())
		assert.Equal(t, []string{"v1-c1", "v1-c2"}, readIDs(t, filepath.Join(dir, "v1.jsonl")))
		assert.Contains(t, stdout.String(), "pagination and replies incomplete")
	})

	t.Run("leaves no file for a video that fails", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{noTokens: true}
		m := newMain(site.start(t))
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", "v1", "--output-dir", dir, "--rps", "0"), &stdout, &stderr)

		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "v1.jsonl"))
		assert.NoFileExists(t, filepath.Join(dir, "v1.jsonl.tmp"))
	})

	t.Run("rejects empty id list", func(t *testing.T) {
		t.Parallel()

		m := newMain(nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), args("batch", " ", "--output-dir", t.TempDir()), &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), `skip " ": empty`)
		assert.Contains(t, stderr.String(), "no video IDs")
	})
}

func TestBatch_StoreAfterCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db := sqlite.NewDB(filepath.Join(dir, "comments.db"))
	require.NoError(t, db.Open())
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deps := &main.Dependencies{Ctx: ctx, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	comments := []*ytcomments.Comment{{ID: "c1", Text: "first"}, {ID: "c2", Text: "second"}}

	require.NoError(t, main.StoreBatch(ctx, deps, db, dir, "vid", comments, true))

	ids, err := sqlite.NewCommentService(db).CommentIDs(context.Background(), "vid")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)

	var status string
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT status FROM crawls WHERE video_id = 'vid'").Scan(&status))
	assert.Equal(t, sqlite.StatusPartial, status)
}

func TestBatch_StoreFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db := sqlite.NewDB(filepath.Join(dir, "comments.db"))
	require.NoError(t, db.Open())
	require.NoError(t, db.Close())

	deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	comments := []*ytcomments.Comment{{ID: "c1"}}

	err := main.StoreBatch(context.Background(), deps, db, dir, "vid", comments, false)

	require.Error(t, err, "a database that cannot start the crawl is reported, not fatal")
}
