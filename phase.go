package ytcomments

// Phase is a state of a single crawl. Phases only move forward.
type Phase int

// Crawl phases in execution order.
const (
	PhaseInit Phase = iota
	PhasePaginating
	PhaseExpandingReplies
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePaginating:
		return "paginating"
	case PhaseExpandingReplies:
		return "expanding_replies"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}
