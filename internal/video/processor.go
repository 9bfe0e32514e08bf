package video

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vedantwpatil/adstrip/internal/timeline"
	"go.uber.org/zap"
)

type ProcessorConfig struct {
	// FFmpegPath is looked up in PATH when empty.
	FFmpegPath string
	VideoCodec string
	CRF        int
	AudioCodec string
}

// Processor implements Transcoder with the ffmpeg binary. Cuts are stream
// copies; the concat re-encodes so segment joins are clean.
type Processor struct {
	ffmpegPath string
	config     ProcessorConfig
	logger     *zap.Logger
}

func NewProcessor(config ProcessorConfig, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := config.FFmpegPath
	if path == "" {
		var err error
		path, err = exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
	}
	return &Processor{ffmpegPath: path, config: config, logger: logger}, nil
}

func (p *Processor) Cut(ctx context.Context, input string, span timeline.Span, outputPath string) error {
	return p.run(ctx, p.cutArgs(input, span, outputPath))
}

func (p *Processor) Concat(ctx context.Context, manifestPath, outputPath string) error {
	return p.run(ctx, p.concatArgs(manifestPath, outputPath))
}

func (p *Processor) cutArgs(input string, span timeline.Span, outputPath string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-ss", formatSeconds(span.Start),
		"-i", input,
		"-t", formatSeconds(span.Duration),
		"-c:v", "copy",
		"-c:a", "copy",
		outputPath,
	}
}

func (p *Processor) concatArgs(manifestPath, outputPath string) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c:v", p.config.VideoCodec,
	}
	if p.config.VideoCodec != "copy" {
		args = append(args, "-crf", strconv.Itoa(p.config.CRF))
	}
	args = append(args, "-c:a", p.config.AudioCodec, outputPath)
	return args
}

func (p *Processor) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	p.logger.Debug("running ffmpeg", zap.Strings("args", args))

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(string(output), 5))
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// tail keeps the last n non-empty lines of ffmpeg output for error messages.
func tail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
