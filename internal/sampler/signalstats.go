package sampler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/vedantwpatil/adstrip/internal/timeline"
)

const yavgKey = "lavfi.signalstats.YAVG="

// SignalStatsSource measures frames with ffmpeg's signalstats filter and reads
// the per-frame average luma from the metadata printer on stdout. Only the
// scalar is transferred, so it is much cheaper than piping raw frames.
type SignalStatsSource struct {
	ffmpegPath string
}

// NewSignalStatsSource resolves ffmpegPath, looking it up in PATH when empty.
func NewSignalStatsSource(ffmpegPath string) (*SignalStatsSource, error) {
	if ffmpegPath == "" {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("signalstats sampler: ffmpeg not found in PATH: %w", err)
		}
		ffmpegPath = path
	}
	return &SignalStatsSource{ffmpegPath: ffmpegPath}, nil
}

func (s *SignalStatsSource) Open(ctx context.Context, path string) (Stream, error) {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-map", "0:v:0",
		"-vf", "signalstats,metadata=mode=print:key=lavfi.signalstats.YAVG:file=-",
		"-f", "null", "-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, unreadable(path, err)
	}
	stream := &signalStatsStream{ctx: ctx, path: path, cmd: cmd, stdout: stdout}
	cmd.Stderr = &stream.stderr

	if err := cmd.Start(); err != nil {
		return nil, unreadable(path, err)
	}
	stream.scanner = bufio.NewScanner(stdout)
	return stream, nil
}

type signalStatsStream struct {
	ctx     context.Context
	path    string
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	scanner *bufio.Scanner
	index   timeline.FrameIndex
	frame   Frame
	err     error
	done    bool
}

func (s *signalStatsStream) Next() bool {
	if s.done {
		return false
	}
	for s.scanner.Scan() {
		yavg, ok := parseYAVG(s.scanner.Text())
		if !ok {
			continue
		}
		s.index++
		s.frame = Frame{Index: s.index, Brightness: limitedToFull(yavg)}
		return true
	}
	s.finish(s.scanner.Err())
	return false
}

func (s *signalStatsStream) finish(scanErr error) {
	s.done = true
	waitErr := s.cmd.Wait()
	switch {
	case s.ctx.Err() != nil:
		s.err = s.ctx.Err()
	case scanErr != nil:
		s.err = unreadable(s.path, scanErr)
	case waitErr != nil:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			s.err = unreadable(s.path, fmt.Errorf("%w: %s", waitErr, lastLine(s.stderr.String())))
		} else {
			s.err = unreadable(s.path, waitErr)
		}
	}
}

func (s *signalStatsStream) Frame() Frame { return s.frame }
func (s *signalStatsStream) Err() error   { return s.err }

// FrameRate is not reported by the metadata printer.
func (s *signalStatsStream) FrameRate() float64 { return 0 }

func (s *signalStatsStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

// parseYAVG extracts the value from a metadata line such as
//
//	lavfi.signalstats.YAVG=16.032
func parseYAVG(line string) (float64, bool) {
	idx := strings.Index(line, yavgKey)
	if idx == -1 {
		return 0, false
	}
	fields := strings.Fields(line[idx+len(yavgKey):])
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// limitedToFull maps broadcast (16..235) luma onto the 0..255 scale used by
// the RGB sampler so both backends share one blank threshold.
func limitedToFull(y float64) float64 {
	v := (y - 16) * 255 / 219
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i != -1 {
		return s[i+1:]
	}
	return s
}
