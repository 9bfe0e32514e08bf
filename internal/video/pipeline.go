package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vedantwpatil/adstrip/internal/blank"
	"github.com/vedantwpatil/adstrip/internal/config"
	"github.com/vedantwpatil/adstrip/internal/metrics"
	"github.com/vedantwpatil/adstrip/internal/sampler"
	"github.com/vedantwpatil/adstrip/internal/segment"
	"github.com/vedantwpatil/adstrip/internal/timeline"
	"github.com/vedantwpatil/adstrip/internal/workspace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Stage names used for spans, metrics and failure labels.
const (
	StageDetect   = "detect"
	StageLocate   = "locate"
	StageClassify = "classify"
	StageEmit     = "emit"
)

// ErrUnknownFrameRate is returned when no frame rate is configured and the
// source does not report one.
var ErrUnknownFrameRate = errors.New("frame rate unknown")

type Request struct {
	Input   string
	Outputs []string
	// DryRun stops after classification and reports the planned cuts.
	DryRun bool
}

// Report describes what a run found and wrote.
type Report struct {
	RunID          string
	FrameRate      float64
	FramesScanned  int
	Markers        []timeline.FrameIndex
	Classification *segment.Classification
	Planned        []VideoSegment
	Outputs        []Output
}

type Pipeline struct {
	config     *config.Config
	source     sampler.Source
	transcoder Transcoder
	logger     *zap.Logger
	metrics    *metrics.Run
	tracer     trace.Tracer
	remainder  segment.RemainderPolicy
}

// NewPipeline checks the named heuristic and remainder policy up front so a
// typo fails before the source is scanned.
func NewPipeline(cfg *config.Config, source sampler.Source, transcoder Transcoder, logger *zap.Logger, m *metrics.Run) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	if _, err := segment.NewHeuristic(cfg.Detection.Heuristic, segment.Params{}); err != nil {
		return nil, err
	}
	remainder, err := segment.ParseRemainderPolicy(cfg.Emit.Remainder)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		config:     cfg,
		source:     source,
		transcoder: transcoder,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("github.com/vedantwpatil/adstrip/internal/video"),
		remainder:  remainder,
	}, nil
}

// validateInput checks that the input file exists and is a regular file.
func (p *Pipeline) validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", sampler.ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", sampler.ErrSourceUnreadable, inputPath)
	}
	return nil
}

// Process runs every stage for one recording. On error the returned report
// holds whatever the earlier stages produced.
func (p *Pipeline) Process(ctx context.Context, req Request) (report *Report, err error) {
	if len(req.Outputs) == 0 {
		return nil, errors.New("at least one output path is required")
	}
	report = &Report{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", report.RunID), zap.String("input", req.Input))

	ctx, span := p.tracer.Start(ctx, "adstrip.process", trace.WithAttributes(
		attribute.String("adstrip.run_id", report.RunID),
		attribute.String("adstrip.input", req.Input),
		attribute.Int("adstrip.outputs", len(req.Outputs)),
	))
	defer func() { endSpan(span, err) }()

	if err := p.validateInput(req.Input); err != nil {
		p.metrics.Fail(StageDetect)
		return report, err
	}

	rate, markers, err := p.detect(ctx, req.Input, report, log)
	if err != nil {
		p.metrics.Fail(StageDetect)
		return report, err
	}

	params := p.segmentParams(rate)
	start := time.Now()
	programStart, rest, err := segment.LocateProgramStart(markers, params.ProgStartThreshold)
	p.metrics.ObserveStage(StageLocate, start)
	if err != nil {
		p.metrics.Fail(StageLocate)
		return report, err
	}
	log.Info("program start located",
		zap.Int("frame", int(programStart)),
		zap.Float64("seconds", rate.Seconds(programStart)))

	classification, err := p.classify(ctx, params, programStart, rest, log)
	report.Classification = classification
	if err != nil {
		p.metrics.Fail(StageClassify)
		return report, err
	}

	emitter := NewEmitter(p.transcoder, EmitterConfig{
		Rate: rate,
		Offsets: timeline.Offsets{
			Start: rate.Frames(p.config.Emit.SegStartDelaySeconds),
			End:   rate.Frames(p.config.Emit.SegEndDelaySeconds),
		},
		Workers:    p.config.Emit.Workers,
		SegmentExt: p.config.Emit.SegmentExt,
		Remainder:  p.remainder,
	}, log)

	layout, err := emitter.Prepare(classification.Segments, len(req.Outputs))
	if err != nil {
		p.metrics.Fail(StageEmit)
		return report, err
	}
	report.Planned = layout.Segments
	if req.DryRun {
		for _, seg := range report.Planned {
			log.Info("planned cut",
				zap.Int("segment", seg.Index),
				zap.Stringer("frames", seg.Frames),
				zap.Float64("start", seg.Span.Start),
				zap.Float64("duration", seg.Span.Duration))
		}
		return report, nil
	}

	report.Outputs, err = p.emit(ctx, emitter, req, layout, report.RunID, log)
	if err != nil {
		p.metrics.Fail(StageEmit)
		return report, err
	}
	p.metrics.Outputs.Set(float64(len(report.Outputs)))
	log.Info("run complete", zap.Int("outputs", len(report.Outputs)))
	return report, nil
}

func (p *Pipeline) detect(ctx context.Context, input string, report *Report, log *zap.Logger) (rate timeline.Rate, markers []timeline.FrameIndex, err error) {
	ctx, span := p.tracer.Start(ctx, StageDetect)
	defer func() { endSpan(span, err) }()
	defer p.metrics.ObserveStage(StageDetect, time.Now())

	stream, err := p.source.Open(ctx, input)
	if err != nil {
		return 0, nil, err
	}
	defer stream.Close()

	rate, err = p.resolveRate(stream)
	if err != nil {
		return 0, nil, err
	}
	report.FrameRate = float64(rate)

	params := blank.Params{
		Threshold:     p.config.Detection.BlankThreshold,
		NearThreshold: rate.Frames(p.config.Detection.BlankNearSeconds),
	}
	det, err := blank.Detect(ctx, stream, params, log)
	if det != nil {
		report.FramesScanned = det.Scanned()
		report.Markers = det.Markers()
		p.metrics.FramesScanned.Add(float64(det.Scanned()))
		p.metrics.BlankMarkers.Add(float64(len(det.Markers())))
	}
	if err != nil {
		return 0, nil, err
	}

	span.SetAttributes(
		attribute.Int("adstrip.frames_scanned", det.Scanned()),
		attribute.Int("adstrip.markers", len(det.Markers())),
	)
	log.Info("blank detection finished",
		zap.Int("frames", det.Scanned()),
		zap.Int("markers", len(det.Markers())),
		zap.Float64("fps", float64(rate)))
	return rate, det.Markers(), nil
}

// resolveRate prefers the configured frame rate; 0 defers to the source.
func (p *Pipeline) resolveRate(stream sampler.Stream) (timeline.Rate, error) {
	if fps := p.config.Detection.FrameRate; fps > 0 {
		return timeline.Rate(fps), nil
	}
	if fps := stream.FrameRate(); fps > 0 {
		return timeline.Rate(fps), nil
	}
	return 0, fmt.Errorf("%w: set ADSTRIP_FRAMERATE", ErrUnknownFrameRate)
}

// segmentParams converts the configured durations to frame counts at rate.
func (p *Pipeline) segmentParams(rate timeline.Rate) segment.Params {
	d := p.config.Detection
	return segment.Params{
		ProgStartThreshold: timeline.FrameIndex(rate.Frames(d.ProgStartSeconds)),
		AdBreakMinimum:     rate.Frames(d.AdBreakMinimumSeconds),
		ShowBlockMinimum:   rate.Frames(d.ShowBlockMinimumSeconds),
	}
}

func (p *Pipeline) classify(ctx context.Context, params segment.Params, programStart timeline.FrameIndex, markers []timeline.FrameIndex, log *zap.Logger) (c *segment.Classification, err error) {
	_, span := p.tracer.Start(ctx, StageClassify)
	defer func() { endSpan(span, err) }()
	defer p.metrics.ObserveStage(StageClassify, time.Now())

	h, err := segment.NewHeuristic(p.config.Detection.Heuristic, params)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("adstrip.heuristic", h.Name()))

	c, err = segment.NewClassifier(h, log).Classify(programStart, markers)
	if c != nil {
		p.metrics.DroppedBlanks.Add(float64(len(c.Dropped)))
		p.metrics.Segments.Set(float64(len(c.Segments)))
	}
	return c, err
}

func (p *Pipeline) emit(ctx context.Context, emitter *Emitter, req Request, layout *Layout, runID string, log *zap.Logger) (outputs []Output, err error) {
	ctx, span := p.tracer.Start(ctx, StageEmit)
	defer func() { endSpan(span, err) }()
	defer p.metrics.ObserveStage(StageEmit, time.Now())

	ws, err := workspace.New(p.config.TempDir, runID, log)
	if err != nil {
		return nil, err
	}
	log.Debug("cutting into workspace", zap.String("dir", ws.Dir()), zap.Int("segments", len(layout.Segments)))
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			log.Warn("failed to remove workspace", zap.Error(cerr))
		}
	}()

	return emitter.Write(ctx, ws, req.Input, layout, req.Outputs)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
