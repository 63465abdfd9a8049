// Package fs provides file-based storage for downloaded comments.
package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/ytcomments"
)

// Ensure JSONLWriter implements ytcomments.CommentWriter at compile time.
var _ ytcomments.CommentWriter = (*JSONLWriter)(nil)

// JSONLWriter writes comments as JSON lines with atomic update semantics.
// Comments are written to path.tmp, which replaces path on Commit.
type JSONLWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
	n    int
}

// WriterOption configures a JSONLWriter.
type WriterOption func(*writerConfig)

type writerConfig struct {
	keepExisting bool
}

// WithExisting copies the comments already stored at the destination into
// the new file, so a resumed crawl appends to them.
func WithExisting() WriterOption {
	return func(c *writerConfig) {
		c.keepExisting = true
	}
}

// NewJSONLWriter creates the temporary file for a new crawl.
func NewJSONLWriter(path string, opts ...WriterOption) (*JSONLWriter, error) {
	var cfg writerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	w := &JSONLWriter{path: path}
	f, err := os.Create(w.tempPath())
	if err != nil {
		return nil, err
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	w.enc = json.NewEncoder(w.buf)
	w.enc.SetEscapeHTML(false)

	if cfg.keepExisting {
		if err := w.copyExisting(); err != nil {
			_ = w.Abort()
			return nil, err
		}
	}

	return w, nil
}

func (w *JSONLWriter) tempPath() string {
	return w.path + ".tmp"
}

func (w *JSONLWriter) copyExisting() error {
	src, err := os.Open(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(w.buf, src)
	return err
}

// WriteComment appends one comment line.
func (w *JSONLWriter) WriteComment(ctx context.Context, c *ytcomments.Comment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := w.enc.Encode(c); err != nil {
		return err
	}
	w.n++
	return nil
}

// Count returns the number of comments written by this writer.
func (w *JSONLWriter) Count() int {
	return w.n
}

// Commit flushes the temporary file and moves it over the destination.
func (w *JSONLWriter) Commit() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.Abort()
		return err
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tempPath())
		return err
	}
	return os.Rename(w.tempPath(), w.path)
}

// Abort discards the temporary file and leaves the destination untouched.
func (w *JSONLWriter) Abort() error {
	_ = w.file.Close()
	err := os.Remove(w.tempPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
