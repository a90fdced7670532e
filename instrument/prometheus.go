// Package instrument records training and forecast activity as prometheus metrics.
package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess   = "success"
	OutcomeCancelled = "cancelled"
	OutcomeDiverged  = "diverged"
	OutcomeError     = "error"
)

// Recorder owns its own registry so several sessions can live in one process without colliding
// on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	trainingEpochs   prometheus.Counter
	forecastChunks   prometheus.Counter
	validationLoss   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		trainingRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "windcaster_training_runs_total",
				Help: "Total number of training runs by outcome",
			},
			[]string{"outcome"},
		),
		trainingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "windcaster_training_duration_seconds",
				Help:    "Duration of training runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
		),
		trainingEpochs: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "windcaster_training_epochs_total",
				Help: "Total number of completed training epochs",
			},
		),
		forecastChunks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "windcaster_forecast_chunks_total",
				Help: "Total number of hourly forecast chunks produced",
			},
		),
		validationLoss: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "windcaster_last_validation_loss",
				Help: "Validation loss of the last completed epoch",
			},
		),
	}
}

// Registry exposes the recorder's registry for scraping
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordTraining records the outcome and duration of a training run.
func (r *Recorder) RecordTraining(outcome string, d time.Duration) {
	r.trainingRuns.WithLabelValues(outcome).Inc()
	r.trainingDuration.Observe(d.Seconds())
}

// RecordEpoch records a completed epoch and its validation loss.
func (r *Recorder) RecordEpoch(validationLoss float64) {
	r.trainingEpochs.Inc()
	r.validationLoss.Set(validationLoss)
}

// RecordChunks records forecast chunks returned to the caller.
func (r *Recorder) RecordChunks(n int) {
	r.forecastChunks.Add(float64(n))
}
