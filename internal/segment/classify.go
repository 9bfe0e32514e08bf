// Package segment partitions a recording's blank markers into program
// segments.
//
// Blank frames appear both at real show/ad transitions and inside ad blocks
// (fades between commercials). After the program start is anchored, the
// classifier walks the remaining markers as a two-state machine: in the show
// every blank is a show-to-ad transition; in an ad a blank either closes the
// ad block or, as judged by a Heuristic, is noise and dropped. The kept
// markers, prefixed with the program start, alternate show-start/show-end and
// pair into segments.
package segment

import (
	"github.com/vedantwpatil/adstrip/internal/timeline"
	"go.uber.org/zap"
)

// Params are the classification tunables, in frames.
type Params struct {
	ProgStartThreshold timeline.FrameIndex
	AdBreakMinimum     int
	ShowBlockMinimum   int
}

type state int

const (
	inShow state = iota
	inAd
)

func (s state) String() string {
	if s == inAd {
		return "ad"
	}
	return "show"
}

// Classification is the outcome of one classifier run.
type Classification struct {
	ProgramStart timeline.FrameIndex
	// Boundaries starts with ProgramStart and alternates show start/end.
	Boundaries []timeline.FrameIndex
	// Dropped holds the markers judged ad-internal, in input order.
	Dropped  []timeline.FrameIndex
	Segments []timeline.Segment
}

type Classifier struct {
	heuristic Heuristic
	logger    *zap.Logger
}

func NewClassifier(h Heuristic, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{heuristic: h, logger: logger}
}

// Boundaries runs the show/ad state machine over markers (the markers after
// programStart, ascending) and returns the boundary list with programStart
// prepended, plus the dropped markers. markers is not modified.
func (c *Classifier) Boundaries(programStart timeline.FrameIndex, markers []timeline.FrameIndex) (kept, dropped []timeline.FrameIndex) {
	kept = make([]timeline.FrameIndex, 0, len(markers)+1)
	kept = append(kept, programStart)

	st := inShow
	for i, m := range markers {
		if st == inShow {
			kept = append(kept, m)
			st = inAd
			continue
		}

		w := Window{Prev: kept[len(kept)-1], Current: m}
		if i+1 < len(markers) {
			w.Next, w.HasNext = markers[i+1], true
		}
		if c.heuristic.AdInternal(w) {
			c.logger.Debug("dropping in-ad blank",
				zap.Int("frame", int(m)),
				zap.Int("since_prev", int(m-w.Prev)),
				zap.String("heuristic", c.heuristic.Name()),
			)
			dropped = append(dropped, m)
			continue
		}
		kept = append(kept, m)
		st = inShow
	}
	return kept, dropped
}

// Classify produces the program segments for markers following programStart.
func (c *Classifier) Classify(programStart timeline.FrameIndex, markers []timeline.FrameIndex) (*Classification, error) {
	boundaries, dropped := c.Boundaries(programStart, markers)
	c.logger.Info("classified boundaries",
		zap.Int("program_start", int(programStart)),
		zap.Ints("boundaries", toInts(boundaries)),
		zap.Int("dropped", len(dropped)),
	)

	result := &Classification{
		ProgramStart: programStart,
		Boundaries:   boundaries,
		Dropped:      dropped,
	}
	segments, err := Pair(boundaries)
	if err != nil {
		return result, err
	}
	result.Segments = segments
	return result, nil
}

// Pair splits an alternating boundary list into show segments
// (b[0],b[1]), (b[2],b[3]), ...
func Pair(boundaries []timeline.FrameIndex) ([]timeline.Segment, error) {
	if len(boundaries) < 2 {
		var start timeline.FrameIndex
		if len(boundaries) == 1 {
			start = boundaries[0]
		}
		return nil, &EmptySegmentsError{ProgramStart: start}
	}
	if len(boundaries)%2 != 0 {
		return nil, &UnpairedBoundaryError{Boundaries: boundaries}
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, &BoundaryOrderError{Index: i, Boundaries: boundaries}
		}
	}

	segments := make([]timeline.Segment, 0, len(boundaries)/2)
	for k := 0; k+1 < len(boundaries); k += 2 {
		segments = append(segments, timeline.Segment{Start: boundaries[k], End: boundaries[k+1]})
	}
	return segments, nil
}

func toInts(frames []timeline.FrameIndex) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = int(f)
	}
	return out
}
