// Package ytcomments downloads the complete comment thread of a video from a
// paginated web endpoint that has no stable API.
//
// A crawl runs in three phases: the initial page yields the first comments
// and two session tokens, an AJAX endpoint is polled with a continuation
// cursor for further pages, and finally every reply group collected along the
// way is expanded into its nested comments.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, gemini/).
package ytcomments
