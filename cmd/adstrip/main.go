// Command adstrip removes commercial breaks from a broadcast recording by
// cutting it at blank frames.
//
//	adstrip [flags] <input> <output> [output...]
//
// Settings come from ADSTRIP_* environment variables; the flags below
// override the matching variables for one run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vedantwpatil/adstrip/internal/config"
	"github.com/vedantwpatil/adstrip/internal/logging"
	"github.com/vedantwpatil/adstrip/internal/metrics"
	"github.com/vedantwpatil/adstrip/internal/sampler"
	"github.com/vedantwpatil/adstrip/internal/tracing"
	"github.com/vedantwpatil/adstrip/internal/video"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	input     string
	outputs   []string
	dryRun    bool
	heuristic string
	remainder string
	workers   int
}

// parseArgs reads flags and positional arguments. Flags left unset keep the
// environment's value.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("adstrip", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: adstrip [flags] <input> <output> [output...]")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.BoolVar(&opts.dryRun, "dry-run", false, "detect and classify only; log the planned cuts")
	fs.StringVar(&opts.heuristic, "heuristic", "", "ad-break heuristic: duration or lookahead")
	fs.StringVar(&opts.remainder, "remainder", "", "leftover segments: last or drop")
	fs.IntVar(&opts.workers, "workers", 0, "concurrent segment cuts")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return nil, fmt.Errorf("%w: need an input and at least one output", errUsage)
	}
	opts.input = fs.Arg(0)
	opts.outputs = fs.Args()[1:]
	return opts, nil
}

func (o *options) apply(cfg *config.Config) {
	if o.heuristic != "" {
		cfg.Detection.Heuristic = o.heuristic
	}
	if o.remainder != "" {
		cfg.Emit.Remainder = o.remainder
	}
	if o.workers > 0 {
		cfg.Emit.Workers = o.workers
	}
}

type Application struct {
	config  *config.Config
	options *options
	logger  *zap.Logger
	metrics *metrics.Run
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewApplication(cfg *config.Config, opts *options, logger *zap.Logger) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		config:  cfg,
		options: opts,
		logger:  logger,
		metrics: metrics.New(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (app *Application) Run() error {
	defer app.cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go app.handleSignals(sigChan)

	shutdown, err := tracing.Init(app.ctx, app.config.Tracing.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			app.logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()
	defer app.writeMetrics()

	source, err := sampler.New(app.config.Sampler.Backend, app.config.Emit.FFmpegPath)
	if err != nil {
		return err
	}
	processor, err := video.NewProcessor(video.ProcessorConfig{
		FFmpegPath: app.config.Emit.FFmpegPath,
		VideoCodec: app.config.Emit.VideoCodec,
		CRF:        app.config.Emit.CRF,
		AudioCodec: app.config.Emit.AudioCodec,
	}, app.logger)
	if err != nil {
		return err
	}
	pipeline, err := video.NewPipeline(app.config, source, processor, app.logger, app.metrics)
	if err != nil {
		return err
	}

	_, err = pipeline.Process(app.ctx, video.Request{
		Input:   app.options.input,
		Outputs: app.options.outputs,
		DryRun:  app.options.dryRun,
	})
	return err
}

func (app *Application) writeMetrics() {
	path := app.config.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := app.metrics.WriteTextfile(path); err != nil {
		app.logger.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
	}
}

// handleSignals cancels the run on the first signal. Cancellation stops the
// frame scan or kills the running ffmpeg, and deferred cleanup still runs.
func (app *Application) handleSignals(sigChan chan os.Signal) {
	select {
	case sig := <-sigChan:
		app.logger.Warn("received signal, stopping", zap.String("signal", sig.String()))
		app.cancel()
	case <-app.ctx.Done():
	}
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "adstrip: %v\n", err)
		return exitUsage
	}
	opts.apply(cfg)

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(stderr, "adstrip: %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	if err := NewApplication(cfg, opts, logger).Run(); err != nil {
		logger.Error("run failed", zap.Error(err))
		return exitError
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
