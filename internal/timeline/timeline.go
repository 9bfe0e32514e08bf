// Package timeline holds the frame-index vocabulary shared by every stage of
// the ad stripper: frame positions, program segments, and the conversion of
// both into seconds at a fixed frame rate.
package timeline

import (
	"fmt"
	"math"
)

// FrameIndex is the 1-based position of a frame in the source stream.
type FrameIndex int

// Segment is one contiguous program interval in source frame space,
// before any start/end delay is applied. Start is always < End.
type Segment struct {
	Start FrameIndex
	End   FrameIndex
}

// Len returns the number of frames the segment spans.
func (s Segment) Len() int {
	return int(s.End - s.Start)
}

func (s Segment) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Rate is a frame rate in frames per second.
type Rate float64

// Frames converts a duration in seconds to a whole number of frames.
func (r Rate) Frames(seconds float64) int {
	return int(math.Round(seconds * float64(r)))
}

// Seconds returns the timestamp of a frame index.
func (r Rate) Seconds(i FrameIndex) float64 {
	return float64(i) / float64(r)
}

// Offsets nudges segment boundaries, in frames, before they are turned into
// cut times. Start moves the cut past the blank frame that opened the show.
type Offsets struct {
	Start int
	End   int
}

// Span is a cut request in seconds.
type Span struct {
	Start    float64
	Duration float64
}

// End returns the end time of the span.
func (s Span) End() float64 {
	return s.Start + s.Duration
}

// SpanOf converts a frame segment into the time range handed to the
// transcoder: start = (s + Start) / rate, end = (e + End) / rate.
func (r Rate) SpanOf(seg Segment, off Offsets) Span {
	start := r.Seconds(seg.Start + FrameIndex(off.Start))
	end := r.Seconds(seg.End + FrameIndex(off.End))
	return Span{Start: start, Duration: end - start}
}
