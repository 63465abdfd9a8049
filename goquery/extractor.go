// Package goquery implements ytcomments.CommentExtractor with CSS selectors
// evaluated by goquery.
package goquery

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ytcomments"
)

// Ensure Extractor implements ytcomments.CommentExtractor at compile time.
var _ ytcomments.CommentExtractor = (*Extractor)(nil)

// Selectors describes where comment data lives in the page markup.
type Selectors struct {
	// Item matches one comment element.
	Item string
	// IDAttr is the attribute of Item holding the comment ID.
	IDAttr string

	// Text, Time and Author are evaluated inside an Item; the first match
	// is used.
	Text   string
	Time   string
	Author string

	// ReplyGroup matches the "view all replies" control of a thread.
	ReplyGroup string
	// ReplyGroupAttr is the attribute of ReplyGroup holding the group ID.
	ReplyGroupAttr string
}

// DefaultSelectors returns the selectors for the classic comments page.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:           ".comment-item[data-cid]",
		IDAttr:         "data-cid",
		Text:           ".comment-text-content",
		Time:           ".time",
		Author:         ".user-name",
		ReplyGroup:     ".comment-replies-header > .load-comments[data-cid]",
		ReplyGroupAttr: "data-cid",
	}
}

// Extractor pulls comments out of page fragments.
type Extractor struct {
	sel Selectors
}

// NewExtractor creates an Extractor using DefaultSelectors.
func NewExtractor() *Extractor {
	return NewExtractorWithSelectors(DefaultSelectors())
}

// NewExtractorWithSelectors creates an Extractor for a custom markup layout.
func NewExtractorWithSelectors(sel Selectors) *Extractor {
	return &Extractor{sel: sel}
}

// Comments returns the comments of a fragment in document order. Elements
// without an ID are skipped.
func (e *Extractor) Comments(html string) iter.Seq[*ytcomments.Comment] {
	return func(yield func(*ytcomments.Comment) bool) {
		doc, ok := parse(html)
		if !ok {
			return
		}
		for _, item := range doc.Find(e.sel.Item).EachIter() {
			id, _ := item.Attr(e.sel.IDAttr)
			if id == "" {
				continue
			}
			comment := &ytcomments.Comment{
				ID:     id,
				Text:   item.Find(e.sel.Text).First().Text(),
				Time:   strings.TrimSpace(item.Find(e.sel.Time).First().Text()),
				Author: item.Find(e.sel.Author).First().Text(),
			}
			if !yield(comment) {
				return
			}
		}
	}
}

// ReplyGroups returns the reply groups referenced by a fragment.
func (e *Extractor) ReplyGroups(html string) iter.Seq[ytcomments.ReplyGroup] {
	return func(yield func(ytcomments.ReplyGroup) bool) {
		doc, ok := parse(html)
		if !ok {
			return
		}
		for _, sel := range doc.Find(e.sel.ReplyGroup).EachIter() {
			id, _ := sel.Attr(e.sel.ReplyGroupAttr)
			if id == "" {
				continue
			}
			if !yield(ytcomments.ReplyGroup{ID: id}) {
				return
			}
		}
	}
}

func parse(html string) (*goquery.Document, bool) {
	if strings.TrimSpace(html) == "" {
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	return doc, true
}
