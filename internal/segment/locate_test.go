package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedantwpatil/adstrip/internal/timeline"
)

func TestLocateProgramStart(t *testing.T) {
	tests := []struct {
		name      string
		markers   []timeline.FrameIndex
		wantStart timeline.FrameIndex
		wantRest  []timeline.FrameIndex
	}{
		{"single anchor", frames(50, 4600, 4650, 9400), 50, frames(4600, 4650, 9400)},
		{"last before threshold wins", frames(10, 900, 3000, 5000), 3000, frames(5000)},
		{"threshold is inclusive", frames(10, 4500, 4600), 4500, frames(4600)},
		{"all before threshold", frames(10, 20), 20, frames()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, rest, err := LocateProgramStart(tt.markers, 4500)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestLocateProgramStartMissing(t *testing.T) {
	_, _, err := LocateProgramStart(frames(4600, 9000), 4500)

	var pse *ProgramStartError
	require.ErrorAs(t, err, &pse)
	assert.ErrorIs(t, err, ErrNoProgramStart)
	assert.Contains(t, err.Error(), "4600")
	assert.Contains(t, err.Error(), "4500")
}

func TestLocateProgramStartNoMarkers(t *testing.T) {
	_, _, err := LocateProgramStart(nil, 4500)
	require.ErrorIs(t, err, ErrNoProgramStart)
	assert.Contains(t, err.Error(), "no blank frames")
}
