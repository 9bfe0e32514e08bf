package segment

import (
	"fmt"

	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// Window is what an ad-break heuristic sees while the classifier is inside an
// ad block: the last boundary kept, the marker under evaluation, and the
// following unread marker if there is one.
type Window struct {
	Prev    timeline.FrameIndex
	Current timeline.FrameIndex
	Next    timeline.FrameIndex
	HasNext bool
}

// Heuristic decides whether a blank seen during an ad block is ad-internal
// noise (true) or the ad-to-show transition (false).
type Heuristic interface {
	Name() string
	AdInternal(w Window) bool
}

// DurationHeuristic treats a blank as noise when the ad block so far is
// shorter than AdBreakMinimum frames.
type DurationHeuristic struct {
	AdBreakMinimum int
}

func (DurationHeuristic) Name() string { return HeuristicDuration }

func (h DurationHeuristic) AdInternal(w Window) bool {
	return int(w.Current-w.Prev) < h.AdBreakMinimum
}

// LookAheadHeuristic treats a blank as noise when the show block it would
// open is shorter than ShowBlockMinimum frames.
type LookAheadHeuristic struct {
	ShowBlockMinimum int
}

func (LookAheadHeuristic) Name() string { return HeuristicLookAhead }

func (h LookAheadHeuristic) AdInternal(w Window) bool {
	return w.HasNext && int(w.Next-w.Current) < h.ShowBlockMinimum
}

const (
	HeuristicDuration  = "duration"
	HeuristicLookAhead = "lookahead"
)

// NewHeuristic returns the heuristic registered under name.
func NewHeuristic(name string, p Params) (Heuristic, error) {
	switch name {
	case HeuristicDuration, "":
		return DurationHeuristic{AdBreakMinimum: p.AdBreakMinimum}, nil
	case HeuristicLookAhead:
		return LookAheadHeuristic{ShowBlockMinimum: p.ShowBlockMinimum}, nil
	default:
		return nil, fmt.Errorf("unknown ad-break heuristic %q", name)
	}
}
