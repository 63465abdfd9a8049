package main

import (
	"fmt"

	"github.com/fwojciec/ytcomments"
)

// Run executes the analyze command.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	reader, closeFn, err := openReader(c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ytcomments.ErrorMessage(err))
		return err
	}
	defer closeFn()

	filter := ytcomments.CommentFilter{Limit: c.Sample}
	if c.Video != "" {
		filter.VideoID = &c.Video
	}
	if c.Sample < 0 {
		filter.Limit = 0
	}

	comments, err := reader.FindComments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ytcomments.ErrorMessage(err))
		return err
	}

	texts := make([]string, len(comments))
	for i, comment := range comments {
		texts[i] = comment.Text
	}
	return printSentiment(deps, c.Analyzer, texts, c.Sample)
}
