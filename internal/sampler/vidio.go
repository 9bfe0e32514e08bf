package sampler

import (
	"context"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/vedantwpatil/adstrip/internal/timeline"
)

// VidioSource decodes frames through Vidio, which pipes raw RGB(A) frames out
// of an ffmpeg subprocess.
type VidioSource struct{}

func (VidioSource) Open(ctx context.Context, path string) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	return &vidioStream{ctx: ctx, video: video}, nil
}

type vidioStream struct {
	ctx   context.Context
	video *vidio.Video
	index timeline.FrameIndex
	frame Frame
	err   error
}

func (s *vidioStream) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if !s.video.Read() {
		return false
	}
	s.index++
	s.frame = Frame{
		Index:      s.index,
		Brightness: meanSample(s.video.FrameBuffer(), s.video.Width()*s.video.Height()),
	}
	return true
}

func (s *vidioStream) Frame() Frame       { return s.frame }
func (s *vidioStream) Err() error         { return s.err }
func (s *vidioStream) FrameRate() float64 { return s.video.FPS() }

func (s *vidioStream) Close() error {
	s.video.Close()
	return nil
}

// meanSample averages the colour channels of a packed frame buffer, skipping
// the alpha channel when one is present.
func meanSample(buf []byte, pixels int) float64 {
	if len(buf) == 0 || pixels <= 0 {
		return 0
	}
	channels := len(buf) / pixels
	if channels < 1 {
		channels = 1
	}
	use := channels
	if use > 3 {
		use = 3
	}

	var sum uint64
	for p := 0; p < pixels; p++ {
		base := p * channels
		if base+use > len(buf) {
			pixels = p
			break
		}
		for c := 0; c < use; c++ {
			sum += uint64(buf[base+c])
		}
	}
	if pixels == 0 {
		return 0
	}
	return float64(sum) / float64(pixels*use)
}
