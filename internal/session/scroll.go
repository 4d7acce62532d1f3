package session

import "github.com/glabrego/feedview-cli/internal/timeline"

type ScrollDecision struct {
	ShowGoToTop bool
	Backfill    bool
}

// OnScroll turns the rows currently on screen into UI decisions. It never
// mutates the feed; the caller starts the backfill.
func (s *Session) OnScroll(top, bottom timeline.Post) ScrollDecision {
	d := ScrollDecision{ShowGoToTop: timeline.ShouldShowGoToTop(top, s.feed)}
	if s.gate.InFlight() || s.exhausted {
		return d
	}
	d.Backfill = timeline.ShouldBackfill(bottom, s.feed)
	return d
}
