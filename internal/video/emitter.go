package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vedantwpatil/adstrip/internal/segment"
	"github.com/vedantwpatil/adstrip/internal/timeline"
	"github.com/vedantwpatil/adstrip/internal/workspace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type EmitterConfig struct {
	Rate       timeline.Rate
	Offsets    timeline.Offsets
	Workers    int
	SegmentExt string
	Remainder  segment.RemainderPolicy
}

// Emitter turns program segments into output files: each segment is cut into
// the workspace, then each output's share is concatenated in order.
type Emitter struct {
	transcoder Transcoder
	config     EmitterConfig
	logger     *zap.Logger
}

func NewEmitter(t Transcoder, config EmitterConfig, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Emitter{transcoder: t, config: config, logger: logger}
}

// Plan converts frame segments to cut spans. It fails before anything is cut
// if an offset leaves a segment with no duration.
func (e *Emitter) Plan(segments []timeline.Segment) ([]VideoSegment, error) {
	planned := make([]VideoSegment, len(segments))
	for i, seg := range segments {
		span := e.config.Rate.SpanOf(seg, e.config.Offsets)
		if span.Duration <= 0 {
			return nil, &SpanError{Segment: i, Frames: seg, Span: span}
		}
		planned[i] = VideoSegment{Index: i, Frames: seg, Span: span}
	}
	return planned, nil
}

// Layout is the emission plan: the planned segments that will be cut and the
// contiguous range of them each output receives.
type Layout struct {
	Segments []VideoSegment
	Ranges   []segment.Range
}

// Prepare partitions segments across outputs and plans the ones that are
// kept. Segments dropped by the remainder policy are never planned.
func (e *Emitter) Prepare(segments []timeline.Segment, outputs int) (*Layout, error) {
	ranges, err := segment.Partition(len(segments), outputs, e.config.Remainder)
	if err != nil {
		return nil, err
	}
	used := ranges[len(ranges)-1].To
	if used < len(segments) {
		e.logger.Warn("dropping remainder segments",
			zap.Int("kept", used),
			zap.Int("dropped", len(segments)-used))
		segments = segments[:used]
	}
	planned, err := e.Plan(segments)
	if err != nil {
		return nil, err
	}
	return &Layout{Segments: planned, Ranges: ranges}, nil
}

// Emit writes len(outputs) files from segments. Output k receives a
// contiguous, ordered run of segments; leftovers follow the remainder policy.
func (e *Emitter) Emit(ctx context.Context, ws *workspace.Workspace, input string, segments []timeline.Segment, outputs []string) ([]Output, error) {
	layout, err := e.Prepare(segments, len(outputs))
	if err != nil {
		return nil, err
	}
	return e.Write(ctx, ws, input, layout, outputs)
}

// Write cuts the layout's segments into ws and assembles every output. Each
// output is first concatenated to a hidden sibling; destinations are only
// renamed into place once every concat has succeeded, so a failed run leaves
// none of its outputs behind.
func (e *Emitter) Write(ctx context.Context, ws *workspace.Workspace, input string, layout *Layout, outputs []string) ([]Output, error) {
	if len(layout.Ranges) != len(outputs) {
		return nil, fmt.Errorf("layout has %d outputs, got %d paths", len(layout.Ranges), len(outputs))
	}
	planned := layout.Segments
	for i := range planned {
		planned[i].Path = ws.SegmentPath(planned[i].Index, e.config.SegmentExt)
	}

	if err := e.cutAll(ctx, input, planned); err != nil {
		return nil, err
	}

	staged := make([]string, 0, len(outputs))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	results := make([]Output, 0, len(outputs))
	for k, r := range layout.Ranges {
		group := planned[r.From:r.To]
		names := make([]string, len(group))
		for j, seg := range group {
			names[j] = workspace.SegmentName(seg.Index, e.config.SegmentExt)
		}
		manifest, err := ws.WriteManifest(k, names)
		if err != nil {
			return nil, err
		}

		e.logger.Info("writing output",
			zap.String("output", outputs[k]),
			zap.Int("first_segment", r.From),
			zap.Int("segments", r.Len()))
		tmp := partialPath(outputs[k])
		staged = append(staged, tmp)
		if err := e.transcoder.Concat(ctx, manifest, tmp); err != nil {
			return nil, &TranscoderError{Op: "concat", Segment: -1, Output: outputs[k], Err: err}
		}
		results = append(results, Output{Path: outputs[k], Segments: group})
	}

	if err := commit(staged, outputs); err != nil {
		return nil, err
	}
	staged = nil
	return results, nil
}

func (e *Emitter) cutAll(ctx context.Context, input string, planned []VideoSegment) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for _, seg := range planned {
		seg := seg
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.logger.Info("cutting segment",
				zap.Int("segment", seg.Index),
				zap.Stringer("frames", seg.Frames),
				zap.Float64("start", seg.Span.Start),
				zap.Float64("duration", seg.Span.Duration))
			if err := e.transcoder.Cut(gctx, input, seg.Span, seg.Path); err != nil {
				return &TranscoderError{Op: "cut", Segment: seg.Index, Frames: seg.Frames, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// commit renames every staged file onto its destination. If a rename fails,
// destinations already moved into place are removed again.
func commit(staged, outputs []string) error {
	for k, tmp := range staged {
		if err := os.Rename(tmp, outputs[k]); err != nil {
			for _, done := range outputs[:k] {
				os.Remove(done)
			}
			return fmt.Errorf("move %s into place: %w", outputs[k], err)
		}
	}
	return nil
}

// partialPath is the hidden sibling an output is written to before rename.
// It keeps the extension so ffmpeg picks the same muxer.
func partialPath(dest string) string {
	dir, base := filepath.Split(dest)
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}
