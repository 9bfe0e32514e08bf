// Package blank finds blank (near-black) frames in a frame stream.
//
// A frame is blank when its mean sample value is below Params.Threshold.
// Consecutive blank frames closer together than Params.NearThreshold collapse
// into the first one, so a fade that spans a few frames yields one marker.
package blank

import (
	"context"

	"github.com/vedantwpatil/adstrip/internal/sampler"
	"github.com/vedantwpatil/adstrip/internal/timeline"
	"go.uber.org/zap"
)

type Params struct {
	// Threshold is the mean sample value (0..255) below which a frame is blank.
	Threshold float64
	// NearThreshold is the deduplication window in frames.
	NearThreshold int
}

// Detector accumulates blank markers over a single forward pass.
type Detector struct {
	params  Params
	logger  *zap.Logger
	last    timeline.FrameIndex
	markers []timeline.FrameIndex
	scanned int
}

func NewDetector(p Params, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		params: p,
		logger: logger,
		// sentinel so the first qualifying frame is always accepted
		last: timeline.FrameIndex(-p.NearThreshold),
	}
}

// Observe feeds one frame and reports whether it produced a marker.
func (d *Detector) Observe(f sampler.Frame) bool {
	d.scanned++
	if f.Brightness >= d.params.Threshold {
		return false
	}
	if int(f.Index-d.last) <= d.params.NearThreshold {
		return false
	}
	d.last = f.Index
	d.markers = append(d.markers, f.Index)
	d.logger.Debug("blank frame", zap.Int("frame", int(f.Index)), zap.Float64("brightness", f.Brightness))
	return true
}

// Markers returns the markers found so far in ascending order.
func (d *Detector) Markers() []timeline.FrameIndex {
	return d.markers
}

// Scanned returns the number of frames observed.
func (d *Detector) Scanned() int {
	return d.scanned
}

// Detect drains stream and returns its blank markers. An empty or entirely
// non-blank stream yields an empty result, not an error.
func Detect(ctx context.Context, stream sampler.Stream, p Params, logger *zap.Logger) (*Detector, error) {
	d := NewDetector(p, logger)
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return d, err
		}
		d.Observe(stream.Frame())
	}
	if err := stream.Err(); err != nil {
		return d, err
	}
	return d, nil
}
