package segment

import (
	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// LocateProgramStart picks the last marker at or before threshold as the
// program start. Markers up to and including it are pre-roll noise; the rest
// are returned for classification. markers must be ascending.
//
// The returned slice aliases markers.
func LocateProgramStart(markers []timeline.FrameIndex, threshold timeline.FrameIndex) (timeline.FrameIndex, []timeline.FrameIndex, error) {
	last := -1
	for i, m := range markers {
		if m > threshold {
			break
		}
		last = i
	}
	if last == -1 {
		return 0, nil, &ProgramStartError{Threshold: threshold, Markers: markers}
	}
	return markers[last], markers[last+1:], nil
}
