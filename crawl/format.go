package crawl

import "fmt"

// FormatPercent formats a ratio in [0, 1] as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatComments formats a comment count for display.
func FormatComments(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return fmt.Sprintf("%d comments", n)
}

// Summary describes a finished crawl in one line.
func Summary(r *Result) string {
	if r == nil {
		return "no comments"
	}
	s := fmt.Sprintf("%s (%d initial, %d paginated, %d replies)",
		FormatComments(r.Total()), r.Initial, r.Paginated, r.Replies)
	switch {
	case r.LimitReached:
		s += ", limit reached"
	case r.Stopped:
		s += ", stopped early"
	case r.PaginationExhausted && r.RepliesExhausted:
		s += ", pagination and replies incomplete"
	case r.PaginationExhausted:
		s += ", pagination incomplete"
	case r.RepliesExhausted:
		s += ", replies incomplete"
	}
	return s
}
