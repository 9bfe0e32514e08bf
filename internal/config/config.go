// Package config loads adstrip settings from ADSTRIP_* environment variables.
//
// Durations are configured in seconds and converted to frame counts once the
// frame rate is known; see Detection.FrameRate.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Detection Detection
	Emit      Emit
	Sampler   Sampler
	Logging   Logging
	Metrics   Metrics
	Tracing   Tracing

	// TempDir is the parent of the per-run workspace; empty means os.TempDir.
	TempDir string `env:"ADSTRIP_TEMP_DIR"`
}

type Detection struct {
	// FrameRate in frames per second; 0 takes the rate reported by the source.
	FrameRate float64 `env:"ADSTRIP_FRAMERATE" envDefault:"25"`
	// BlankThreshold is the mean sample value (0..255) below which a frame is blank.
	BlankThreshold          float64 `env:"ADSTRIP_BLANK_THRESHOLD" envDefault:"0.5"`
	BlankNearSeconds        float64 `env:"ADSTRIP_BLANK_NEAR_SECONDS" envDefault:"2"`
	ProgStartSeconds        float64 `env:"ADSTRIP_PROG_START_SECONDS" envDefault:"180"`
	AdBreakMinimumSeconds   float64 `env:"ADSTRIP_AD_BREAK_MINIMUM_SECONDS" envDefault:"120"`
	ShowBlockMinimumSeconds float64 `env:"ADSTRIP_SHOW_BLOCK_MINIMUM_SECONDS" envDefault:"180"`
	// Heuristic is "duration" or "lookahead".
	Heuristic string `env:"ADSTRIP_HEURISTIC" envDefault:"duration"`
}

type Emit struct {
	SegStartDelaySeconds float64 `env:"ADSTRIP_SEG_START_DELAY_SECONDS" envDefault:"1"`
	SegEndDelaySeconds   float64 `env:"ADSTRIP_SEG_END_DELAY_SECONDS" envDefault:"0"`
	// Remainder is "last" or "drop".
	Remainder  string `env:"ADSTRIP_REMAINDER" envDefault:"last"`
	Workers    int    `env:"ADSTRIP_WORKERS" envDefault:"1"`
	FFmpegPath string `env:"ADSTRIP_FFMPEG_PATH"`
	SegmentExt string `env:"ADSTRIP_SEGMENT_EXT" envDefault:".mkv"`
	VideoCodec string `env:"ADSTRIP_VIDEO_CODEC" envDefault:"libx264"`
	CRF        int    `env:"ADSTRIP_CRF" envDefault:"18"`
	AudioCodec string `env:"ADSTRIP_AUDIO_CODEC" envDefault:"aac"`
}

type Sampler struct {
	// Backend is "vidio" or "signalstats".
	Backend string `env:"ADSTRIP_SAMPLER" envDefault:"vidio"`
}

type Logging struct {
	Level  string `env:"ADSTRIP_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ADSTRIP_LOG_FORMAT" envDefault:"console"`
}

type Metrics struct {
	TextfilePath string `env:"ADSTRIP_METRICS_TEXTFILE"`
}

type Tracing struct {
	OTLPEndpoint string `env:"ADSTRIP_OTLP_ENDPOINT"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads settings from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Names of heuristics, policies and backends are
// checked by the packages that own them.
func (c *Config) Validate() error {
	var errs []error
	d := c.Detection
	if d.FrameRate < 0 {
		errs = append(errs, fmt.Errorf("ADSTRIP_FRAMERATE must be >= 0, got %v", d.FrameRate))
	}
	for name, v := range map[string]float64{
		"ADSTRIP_BLANK_NEAR_SECONDS":         d.BlankNearSeconds,
		"ADSTRIP_PROG_START_SECONDS":         d.ProgStartSeconds,
		"ADSTRIP_AD_BREAK_MINIMUM_SECONDS":   d.AdBreakMinimumSeconds,
		"ADSTRIP_SHOW_BLOCK_MINIMUM_SECONDS": d.ShowBlockMinimumSeconds,
		"ADSTRIP_SEG_START_DELAY_SECONDS":    c.Emit.SegStartDelaySeconds,
		"ADSTRIP_SEG_END_DELAY_SECONDS":      c.Emit.SegEndDelaySeconds,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %v", name, v))
		}
	}
	if c.Emit.Workers < 1 {
		errs = append(errs, fmt.Errorf("ADSTRIP_WORKERS must be >= 1, got %d", c.Emit.Workers))
	}
	return errors.Join(errs...)
}
