package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Detection.FrameRate)
	assert.Equal(t, 0.5, cfg.Detection.BlankThreshold)
	assert.Equal(t, 2.0, cfg.Detection.BlankNearSeconds)
	assert.Equal(t, 180.0, cfg.Detection.ProgStartSeconds)
	assert.Equal(t, 120.0, cfg.Detection.AdBreakMinimumSeconds)
	assert.Equal(t, "duration", cfg.Detection.Heuristic)
	assert.Equal(t, 1.0, cfg.Emit.SegStartDelaySeconds)
	assert.Equal(t, "last", cfg.Emit.Remainder)
	assert.Equal(t, 1, cfg.Emit.Workers)
	assert.Equal(t, ".mkv", cfg.Emit.SegmentExt)
	assert.Equal(t, 18, cfg.Emit.CRF)
	assert.Equal(t, "vidio", cfg.Sampler.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.TextfilePath)
	assert.Empty(t, cfg.Tracing.OTLPEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"ADSTRIP_FRAMERATE":       "29.97",
		"ADSTRIP_HEURISTIC":       "lookahead",
		"ADSTRIP_WORKERS":         "4",
		"ADSTRIP_SAMPLER":         "signalstats",
		"ADSTRIP_TEMP_DIR":        "/scratch",
		"ADSTRIP_OTLP_ENDPOINT":   "http://localhost:4318/v1/traces",
		"ADSTRIP_REMAINDER":       "drop",
		"ADSTRIP_LOG_FORMAT":      "json",
		"ADSTRIP_SEGMENT_EXT":     ".ts",
		"ADSTRIP_BLANK_THRESHOLD": "3",
	})
	require.NoError(t, err)

	assert.Equal(t, 29.97, cfg.Detection.FrameRate)
	assert.Equal(t, "lookahead", cfg.Detection.Heuristic)
	assert.Equal(t, 4, cfg.Emit.Workers)
	assert.Equal(t, "signalstats", cfg.Sampler.Backend)
	assert.Equal(t, "/scratch", cfg.TempDir)
	assert.Equal(t, "drop", cfg.Emit.Remainder)
	assert.Equal(t, ".ts", cfg.Emit.SegmentExt)
	assert.Equal(t, 3.0, cfg.Detection.BlankThreshold)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	_, err := LoadFrom(map[string]string{"ADSTRIP_WORKERS": "many"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"ADSTRIP_WORKERS":            "0",
		"ADSTRIP_FRAMERATE":          "-1",
		"ADSTRIP_PROG_START_SECONDS": "-5",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADSTRIP_WORKERS")
	assert.Contains(t, err.Error(), "ADSTRIP_FRAMERATE")
	assert.Contains(t, err.Error(), "ADSTRIP_PROG_START_SECONDS")
}
