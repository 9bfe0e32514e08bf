package blank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedantwpatil/adstrip/internal/sampler"
	"github.com/vedantwpatil/adstrip/internal/sampler/samplertest"
	"github.com/vedantwpatil/adstrip/internal/timeline"
)

var params = Params{Threshold: 0.5, NearThreshold: 50}

func detect(t *testing.T, values []float64) []timeline.FrameIndex {
	t.Helper()
	d, err := Detect(context.Background(), samplertest.NewStream(25, values...), params, nil)
	require.NoError(t, err)
	return d.Markers()
}

func TestDetectFindsSeparatedBlanks(t *testing.T) {
	markers := detect(t, samplertest.Blanks(10000, 50, 4600, 9400))
	assert.Equal(t, []timeline.FrameIndex{50, 4600, 9400}, markers)
}

func TestDetectAcceptsFirstFrame(t *testing.T) {
	markers := detect(t, samplertest.Blanks(100, 1))
	assert.Equal(t, []timeline.FrameIndex{1}, markers)
}

func TestDetectCollapsesNearbyBlanks(t *testing.T) {
	// a fade: 100..110 all black, then another blank exactly at the window edge
	blanks := []int{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 150, 151}
	markers := detect(t, samplertest.Blanks(400, blanks...))
	// 150 is 50 frames after 100, not more than the window; 151 is 51 after.
	assert.Equal(t, []timeline.FrameIndex{100, 151}, markers)
}

func TestDetectSpacingInvariant(t *testing.T) {
	var blanks []int
	for i := 1; i <= 5000; i += 7 {
		blanks = append(blanks, i)
	}
	markers := detect(t, samplertest.Blanks(5000, blanks...))
	require.NotEmpty(t, markers)
	for i := 1; i < len(markers); i++ {
		assert.Greater(t, int(markers[i]-markers[i-1]), params.NearThreshold)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	values := samplertest.Blanks(3000, 10, 40, 70, 200, 260, 2999)
	first := detect(t, values)
	second := detect(t, values)
	assert.Equal(t, first, second)
}

func TestDetectThresholdIsStrict(t *testing.T) {
	values := []float64{0.5, 0.49, 128}
	markers := detect(t, values)
	assert.Equal(t, []timeline.FrameIndex{2}, markers)
}

func TestDetectEmptyStream(t *testing.T) {
	d, err := Detect(context.Background(), samplertest.NewStream(25), params, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Markers())
	assert.Zero(t, d.Scanned())
}

func TestDetectNoBlanks(t *testing.T) {
	d, err := Detect(context.Background(), samplertest.NewStream(25, samplertest.Blanks(500)...), params, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Markers())
	assert.Equal(t, 500, d.Scanned())
}

func TestDetectPropagatesStreamError(t *testing.T) {
	decodeErr := errors.Join(sampler.ErrSourceUnreadable, errors.New("truncated packet"))
	stream := samplertest.NewStream(25, samplertest.Blanks(100, 10)...).WithError(decodeErr)

	d, err := Detect(context.Background(), stream, params, nil)
	require.ErrorIs(t, err, sampler.ErrSourceUnreadable)
	assert.Equal(t, []timeline.FrameIndex{10}, d.Markers())
}

func TestDetectStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Detect(ctx, samplertest.NewStream(25, samplertest.Blanks(100, 10)...), params, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
