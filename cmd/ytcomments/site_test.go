package main_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	main "github.com/fwojciec/ytcomments/cmd/ytcomments"
	"github.com/stretchr/testify/require"
)

// fakeSite serves the comments page and AJAX endpoint for any video ID.
//
// Every video has two top-level comments on the initial page, the first
// with a reply group. Pagination returns a duplicate and a new comment, then
// a last page; the reply group expands to two replies. That is six unique
// comments per video.
type fakeSite struct {
	mu       sync.Mutex
	ajaxFail bool // every AJAX request returns 500
	noTokens bool // initial page lacks the session markers
	posts    int
	cookies  []string
}

func (s *fakeSite) start(t *testing.T) *url.URL {
	t.Helper()
	server := httptest.NewServer(s)
	t.Cleanup(server.Close)
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return u
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/all_comments":
		s.initial(w, r)
	case "/comment_ajax":
		s.ajax(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) initial(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("v")
	http.SetCookie(w, &http.Cookie{Name: "VISITOR", Value: "visitor-" + v, Path: "/"})

	var b strings.Builder
	b.WriteString("<html><body>")
	if !s.noTokens {
		b.WriteString(`<div id="comments" data-token="cursor-1">`)
	}
	b.WriteString(comment(v+"-c1", "Great video, awesome sound", true))
	b.WriteString(comment(v+"-c2", "I hate the ending", false))
	b.WriteString("</div>")
	if !s.noTokens {
		b.WriteString(`<script>yt.setConfig({'XSRF_TOKEN': "xsrf-token"});</script>`)
	}
	b.WriteString("</body></html>")
	_, _ = w.Write([]byte(b.String()))
}

func (s *fakeSite) ajax(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.posts++
	if c, err := r.Cookie("VISITOR"); err == nil {
		s.cookies = append(s.cookies, c.Value)
	}
	fail := s.ajaxFail
	s.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("session_token") != "xsrf-token" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	v := r.PostForm.Get("video_id")
	switch {
	case q.Get("action_load_replies") == "1":
		group := r.PostForm.Get("comment_id")
		writePage(w, "", comment(group+"-r1", "terrible", false)+comment(group+"-r2", "nice", false))
	case q.Get("order_menu") == "True":
		writePage(w, "cursor-2", comment(v+"-c2", "I hate the ending", false)+comment(v+"-c3", "good", false))
	case r.PostForm.Get("page_token") == "cursor-2":
		writePage(w, "", comment(v+"-c4", "the actors", false))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *fakeSite) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

func (s *fakeSite) cookieValues() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cookies...)
}

func writePage(w http.ResponseWriter, cursor, html string) {
	p := map[string]any{"html_content": html}
	if cursor != "" {
		p["page_token"] = cursor
	}
	_ = json.NewEncoder(w).Encode(p)
}

func comment(id, text string, replies bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="comment-item" data-cid="%s">`, id)
	fmt.Fprintf(&b, `<span class="user-name">user-%s</span><span class="time"> 1 day ago </span>`, id)
	fmt.Fprintf(&b, `<div class="comment-text-content">%s</div>`, text)
	if replies {
		fmt.Fprintf(&b, `<div class="comment-replies-header"><div class="load-comments" data-cid="%s">View all replies</div></div>`, id)
	}
	b.WriteString("</div>")
	return b.String()
}

// newMain returns a Main pointed at the fake site with no API key set.
func newMain(base *url.URL) *main.Main {
	m := main.NewMain()
	m.BaseURL = base
	m.Getenv = func(string) string { return "" }
	return m
}

// fast disables the delays between requests.
var fast = []string{"--pace", "0s", "--retry-delay", "0s"}

func args(a ...string) []string {
	return append(a, fast...)
}
