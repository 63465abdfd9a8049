package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/fwojciec/ytcomments"
)

// Ensure JSONLReader implements ytcomments.CommentReader at compile time.
var _ ytcomments.CommentReader = (*JSONLReader)(nil)

// maxLineSize bounds a single comment line.
const maxLineSize = 1 << 20

// JSONLReader reads a file produced by JSONLWriter. A JSONL file holds the
// comments of one video, so video filters are ignored.
type JSONLReader struct {
	path string
}

// NewJSONLReader creates a reader for the file at path.
func NewJSONLReader(path string) *JSONLReader {
	return &JSONLReader{path: path}
}

// CommentIDs returns the IDs in the file. A missing file has no IDs.
func (r *JSONLReader) CommentIDs(ctx context.Context, videoID string) ([]string, error) {
	comments, err := r.read(ctx, 0)
	if ytcomments.ErrorCode(err) == ytcomments.ENOTFOUND {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	return ids, nil
}

// FindComments returns the comments in file order.
func (r *JSONLReader) FindComments(ctx context.Context, filter ytcomments.CommentFilter) ([]*ytcomments.Comment, error) {
	return r.read(ctx, filter.Limit)
}

func (r *JSONLReader) read(ctx context.Context, limit int) ([]*ytcomments.Comment, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ytcomments.Errorf(ytcomments.ENOTFOUND, "no comments at %s", r.path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	var comments []*ytcomments.Comment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var c ytcomments.Comment
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			return nil, ytcomments.Errorf(ytcomments.EINVALID, "%s line %d: %v", r.path, line, err)
		}
		comments = append(comments, &c)
		if limit > 0 && len(comments) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
