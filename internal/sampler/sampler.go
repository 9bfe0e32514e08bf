// Package sampler turns a recorded video into a lazy stream of per-frame
// brightness summaries. Decoding itself is delegated to ffmpeg, either through
// the Vidio library or through ffmpeg's signalstats filter.
package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// ErrSourceUnreadable reports that a source could not be opened or decoded.
var ErrSourceUnreadable = errors.New("source unreadable")

// Frame is the brightness summary of one decoded frame.
type Frame struct {
	Index timeline.FrameIndex
	// Brightness is the mean sample value on a 0..255 scale.
	Brightness float64
}

// Stream yields frames in increasing index order, starting at 1.
// Next returns false at end of stream or on error; Err distinguishes the two.
type Stream interface {
	Next() bool
	Frame() Frame
	Err() error
	// FrameRate reports the source frame rate, or 0 when unknown.
	FrameRate() float64
	Close() error
}

// Source opens frame streams.
type Source interface {
	Open(ctx context.Context, path string) (Stream, error)
}

// Backend names accepted by New.
const (
	BackendVidio       = "vidio"
	BackendSignalStats = "signalstats"
)

// New returns the Source registered under name.
func New(name, ffmpegPath string) (Source, error) {
	switch name {
	case BackendVidio, "":
		return VidioSource{}, nil
	case BackendSignalStats:
		return NewSignalStatsSource(ffmpegPath)
	default:
		return nil, fmt.Errorf("unknown sampler backend %q", name)
	}
}

func unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
}
