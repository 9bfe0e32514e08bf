package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// VideoSegment is one program segment planned for cutting. Path is set once
// it has a file in the workspace.
type VideoSegment struct {
	Index  int
	Frames timeline.Segment
	Span   timeline.Span
	Path   string
}

// Output is one written destination file and the segments it holds.
type Output struct {
	Path     string
	Segments []VideoSegment
}

// Transcoder cuts spans out of the source and joins cut files. Both calls
// block until the external process exits.
type Transcoder interface {
	Cut(ctx context.Context, input string, span timeline.Span, outputPath string) error
	Concat(ctx context.Context, manifestPath, outputPath string) error
}

var (
	ErrTranscoder  = errors.New("transcoder failed")
	ErrInvalidSpan = errors.New("segment has no duration after offsets")
)

// TranscoderError names the segment or output file whose cut or concat failed.
type TranscoderError struct {
	Op      string // "cut" or "concat"
	Segment int
	Frames  timeline.Segment
	Output  string
	Err     error
}

func (e *TranscoderError) Error() string {
	if e.Op == "concat" {
		return fmt.Sprintf("%v: concat %s: %v", ErrTranscoder, e.Output, e.Err)
	}
	return fmt.Sprintf("%v: %s segment %d (frames %s): %v", ErrTranscoder, e.Op, e.Segment, e.Frames, e.Err)
}

func (e *TranscoderError) Is(target error) bool { return target == ErrTranscoder }
func (e *TranscoderError) Unwrap() error        { return e.Err }

type SpanError struct {
	Segment int
	Frames  timeline.Segment
	Span    timeline.Span
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%v: segment %d (frames %s) spans %.3fs..%.3fs",
		ErrInvalidSpan, e.Segment, e.Frames, e.Span.Start, e.Span.End())
}

func (e *SpanError) Unwrap() error { return ErrInvalidSpan }
