package segment

import (
	"errors"
	"fmt"

	"github.com/vedantwpatil/adstrip/internal/timeline"
)

var (
	ErrNoProgramStart     = errors.New("no program start found")
	ErrEmptySegmentList   = errors.New("no program segments found")
	ErrUnpairedBoundaries = errors.New("boundary list has odd length")
	ErrBoundaryOrder      = errors.New("boundaries are not increasing")
	ErrTooFewSegments     = errors.New("fewer segments than outputs")
)

// ProgramStartError reports that no blank marker falls at or before the
// program-start threshold.
type ProgramStartError struct {
	Threshold timeline.FrameIndex
	Markers   []timeline.FrameIndex
}

func (e *ProgramStartError) Error() string {
	if len(e.Markers) == 0 {
		return fmt.Sprintf("%v: no blank frames detected (threshold frame %d)", ErrNoProgramStart, e.Threshold)
	}
	return fmt.Sprintf("%v: first blank at frame %d is after threshold frame %d",
		ErrNoProgramStart, e.Markers[0], e.Threshold)
}

func (e *ProgramStartError) Unwrap() error { return ErrNoProgramStart }

// EmptySegmentsError reports a recording that classified into one unbroken block.
type EmptySegmentsError struct {
	ProgramStart timeline.FrameIndex
}

func (e *EmptySegmentsError) Error() string {
	return fmt.Sprintf("%v: no transitions after program start at frame %d", ErrEmptySegmentList, e.ProgramStart)
}

func (e *EmptySegmentsError) Unwrap() error { return ErrEmptySegmentList }

// UnpairedBoundaryError is an assertion failure: the classifier left a
// boundary list that cannot be split into show intervals.
type UnpairedBoundaryError struct {
	Boundaries []timeline.FrameIndex
}

func (e *UnpairedBoundaryError) Error() string {
	return fmt.Sprintf("%v (%d): %v", ErrUnpairedBoundaries, len(e.Boundaries), e.Boundaries)
}

func (e *UnpairedBoundaryError) Unwrap() error { return ErrUnpairedBoundaries }

// BoundaryOrderError names the first boundary that does not exceed its predecessor.
type BoundaryOrderError struct {
	Index      int
	Boundaries []timeline.FrameIndex
}

func (e *BoundaryOrderError) Error() string {
	return fmt.Sprintf("%v: frame %d at position %d follows %d",
		ErrBoundaryOrder, e.Boundaries[e.Index], e.Index, e.Boundaries[e.Index-1])
}

func (e *BoundaryOrderError) Unwrap() error { return ErrBoundaryOrder }
