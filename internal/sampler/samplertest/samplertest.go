// Package samplertest provides in-memory frame streams for tests.
package samplertest

import (
	"context"
	"fmt"

	"github.com/vedantwpatil/adstrip/internal/sampler"
	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// Stream replays a fixed brightness sequence as frames 1..n.
type Stream struct {
	rate   float64
	values []float64
	pos    int
	err    error
	Closed bool
}

// NewStream returns a stream over values at the given frame rate.
func NewStream(rate float64, values ...float64) *Stream {
	return &Stream{rate: rate, values: values}
}

// WithError makes the stream report err once its values are exhausted.
func (s *Stream) WithError(err error) *Stream {
	s.err = err
	return s
}

func (s *Stream) Next() bool {
	if s.pos >= len(s.values) {
		return false
	}
	s.pos++
	return true
}

func (s *Stream) Frame() sampler.Frame {
	return sampler.Frame{Index: timeline.FrameIndex(s.pos), Brightness: s.values[s.pos-1]}
}

func (s *Stream) Err() error {
	if s.pos >= len(s.values) {
		return s.err
	}
	return nil
}

func (s *Stream) FrameRate() float64 { return s.rate }

func (s *Stream) Close() error {
	s.Closed = true
	return nil
}

// Blanks builds a brightness sequence of length total with black frames at
// the given 1-based indices and mid grey everywhere else.
func Blanks(total int, blanks ...int) []float64 {
	values := make([]float64, total)
	for i := range values {
		values[i] = 128
	}
	for _, b := range blanks {
		values[b-1] = 0
	}
	return values
}

// Source serves registered streams by path.
type Source struct {
	Streams map[string]*Stream
}

func (s *Source) Open(ctx context.Context, path string) (sampler.Stream, error) {
	stream, ok := s.Streams[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: no such file", sampler.ErrSourceUnreadable, path)
	}
	return stream, nil
}
