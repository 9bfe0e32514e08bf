// Package metrics collects per-run counters on a private Prometheus registry.
// A batch tool has no scrape endpoint, so the registry is written out in the
// text exposition format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Run struct {
	registry *prometheus.Registry

	FramesScanned prometheus.Counter
	BlankMarkers  prometheus.Counter
	DroppedBlanks prometheus.Counter
	Segments      prometheus.Gauge
	Outputs       prometheus.Gauge
	StageDuration *prometheus.HistogramVec
	Failures      *prometheus.CounterVec
}

func New() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		FramesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adstrip_frames_scanned_total",
			Help: "Frames read from the source",
		}),
		BlankMarkers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adstrip_blank_markers_total",
			Help: "Blank markers emitted by the detector",
		}),
		DroppedBlanks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adstrip_dropped_blanks_total",
			Help: "Blank markers classified as ad-internal noise",
		}),
		Segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adstrip_segments",
			Help: "Program segments found in the last run",
		}),
		Outputs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adstrip_outputs",
			Help: "Output files written in the last run",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adstrip_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: []float64{0.1, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adstrip_failures_total",
			Help: "Failed runs, by stage",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(
		r.FramesScanned,
		r.BlankMarkers,
		r.DroppedBlanks,
		r.Segments,
		r.Outputs,
		r.StageDuration,
		r.Failures,
	)
	return r
}

// ObserveStage records the time elapsed since start under stage.
func (r *Run) ObserveStage(stage string, start time.Time) {
	r.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (r *Run) Fail(stage string) {
	r.Failures.WithLabelValues(stage).Inc()
}

// WriteTextfile atomically writes the registry to path.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
