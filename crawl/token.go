package crawl

import (
	"strings"

	"github.com/fwojciec/ytcomments"
)

// Markers locating the session tokens inside the inline script data of the
// initial page. The offset skips the characters between the end of the
// marker and the opening of the value, e.g. `="` or `': "`.
const (
	CursorMarker = "data-token"
	CursorOffset = 2

	XSRFMarker = "XSRF_TOKEN"
	XSRFOffset = 4
)

// ExtractSessionToken returns the value that starts offset bytes after the
// first occurrence of marker and runs up to the next double quote.
//
// The tokens live in script data rather than in the DOM, so they are found
// by plain string search. An absent marker or an unterminated value returns
// an ETOKEN error. An empty value is valid.
func ExtractSessionToken(markup, marker string, offset int) (string, error) {
	idx := strings.Index(markup, marker)
	if idx == -1 {
		return "", ytcomments.Errorf(ytcomments.ETOKEN, "marker %q not found", marker)
	}

	begin := idx + len(marker) + offset
	if begin > len(markup) {
		return "", ytcomments.Errorf(ytcomments.ETOKEN, "marker %q has no value", marker)
	}

	end := strings.IndexByte(markup[begin:], '"')
	if end == -1 {
		return "", ytcomments.Errorf(ytcomments.ETOKEN, "value of marker %q is not terminated", marker)
	}
	return markup[begin : begin+end], nil
}
