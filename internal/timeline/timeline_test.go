package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanOfAppliesStartDelay(t *testing.T) {
	r := Rate(25)
	span := r.SpanOf(Segment{Start: 1000, End: 2000}, Offsets{Start: 25})

	assert.InDelta(t, 41.0, span.Start, 1e-9)
	assert.InDelta(t, 80.0, span.End(), 1e-9)
	assert.InDelta(t, 39.0, span.Duration, 1e-9)
}

func TestSpanOfAppliesEndDelay(t *testing.T) {
	r := Rate(25)
	span := r.SpanOf(Segment{Start: 1000, End: 2000}, Offsets{Start: 25, End: 50})

	assert.InDelta(t, 41.0, span.Start, 1e-9)
	assert.InDelta(t, 82.0, span.End(), 1e-9)
}

func TestRateFrames(t *testing.T) {
	tests := []struct {
		rate    Rate
		seconds float64
		want    int
	}{
		{25, 2, 50},
		{25, 180, 4500},
		{25, 120, 3000},
		{29.97, 1, 30},
		{25, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.rate.Frames(tt.seconds), "rate=%v seconds=%v", tt.rate, tt.seconds)
	}
}

func TestSegmentLen(t *testing.T) {
	seg := Segment{Start: 100, End: 5000}
	assert.Equal(t, 4900, seg.Len())
	assert.Equal(t, "100-5000", seg.String())
}
