// Package windcaster trains a small regression network on recent hourly weather observations for a
// single location and forecasts wind, temperature, humidity and optionally wave conditions for the
// hours ahead.
package windcaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aouyang1/go-windcaster/forecast"
	"github.com/aouyang1/go-windcaster/instrument"
	"github.com/aouyang1/go-windcaster/observation"
	"github.com/aouyang1/go-windcaster/score"
	"github.com/aouyang1/go-windcaster/window"
	"github.com/google/uuid"
)

var (
	ErrInsufficientData   = window.ErrInsufficientData
	ErrInvalidObservation = observation.ErrInvalidObservation
	ErrModelNotTrained    = forecast.ErrModelNotTrained
	ErrTrainingDivergence = forecast.ErrTrainingDivergence
	ErrInvalidOptions     = forecast.ErrInvalidOptions
	ErrInvalidHorizon     = forecast.ErrInvalidHorizon
	ErrNumericFailure     = forecast.ErrNumericFailure
	ErrNoForecast         = errors.New("no forecast has been produced")
)

// TrainModel trains a model on the observations. The caller owns the returned model and must
// release it.
func TrainModel(ctx context.Context, obs []observation.Observation, opt *forecast.Options, onProgress forecast.ProgressFunc) (*forecast.Result, error) {
	return forecast.Train(ctx, obs, opt, onProgress)
}

// PredictNextHours forecasts horizon hours past the newest observation
func PredictNextHours(ctx context.Context, model *forecast.Model, recent []observation.Observation, horizon int) ([]forecast.PredictionChunk, error) {
	return forecast.Predict(ctx, model, recent, horizon, nil)
}

// ComputeMetrics scores predictions of the primary variable against the observed actuals
func ComputeMetrics(actuals, predictions []float64) (*score.Metrics, error) {
	return score.Compute(actuals, predictions, nil, nil)
}

// Forecaster is a forecasting session for one location. It owns at most one trained model at a
// time. Starting a new training run cancels the one in flight and a run never overlaps another.
type Forecaster struct {
	id       string
	opt      *Options
	logger   *slog.Logger
	recorder *instrument.Recorder

	// ctrlMu guards cancel and gen
	ctrlMu sync.Mutex
	cancel context.CancelFunc
	gen    uint64

	// runMu serializes training runs
	runMu sync.Mutex

	mu      sync.RWMutex
	model   *forecast.Model
	result  *forecast.Result
	metrics *score.Metrics
	history observation.Series
	latest  *Results
}

// New creates a new session using the provided options. If no options are provided a default is
// used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.resolve()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster, %w", err)
	}

	id := uuid.NewString()
	logger := slog.Default().With("session_id", id)
	if opt.Location != "" {
		logger = logger.With("location", opt.Location)
	}
	return &Forecaster{
		id:       id,
		opt:      opt,
		logger:   logger,
		recorder: instrument.New(),
	}, nil
}

// ID returns the session id
func (f *Forecaster) ID() string {
	return f.id
}

// Options returns the resolved session options
func (f *Forecaster) Options() Options {
	return *f.opt
}

// Recorder returns the session's metrics recorder
func (f *Forecaster) Recorder() *instrument.Recorder {
	return f.recorder
}

// begin cancels any in-flight run and registers the new one
func (f *Forecaster) begin(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	f.ctrlMu.Lock()
	if f.cancel != nil {
		f.logger.Warn("cancelling in-flight training run")
		f.cancel()
	}
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.ctrlMu.Unlock()

	return runCtx, func() {
		f.ctrlMu.Lock()
		if f.gen == gen {
			f.cancel = nil
		}
		f.ctrlMu.Unlock()
		cancel()
	}
}

func (f *Forecaster) stop() {
	f.ctrlMu.Lock()
	defer f.ctrlMu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return instrument.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return instrument.OutcomeCancelled
	case errors.Is(err, forecast.ErrTrainingDivergence):
		return instrument.OutcomeDiverged
	}
	return instrument.OutcomeError
}

// structural reports whether training failed on its inputs before any numeric work began
func structural(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidObservation) ||
		errors.Is(err, ErrInvalidOptions)
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Train fits a new model on the observations and replaces the session's current model on success.
// The current model is kept when the inputs are rejected or the run is cancelled. Any other
// failure leaves the session untrained.
func (f *Forecaster) Train(ctx context.Context, obs []observation.Observation, onProgress forecast.ProgressFunc) error {
	runCtx, done := f.begin(ctx)
	defer done()

	f.runMu.Lock()
	defer f.runMu.Unlock()

	start := time.Now()
	f.logger.Info("training started",
		"observations", len(obs),
		"preset", f.opt.ForecastOptions.Preset,
		"epochs", f.opt.ForecastOptions.Epochs,
	)

	res, err := forecast.Train(runCtx, obs, f.opt.ForecastOptions, func(p forecast.Progress) {
		if p.Stage == forecast.StageTraining {
			f.recorder.RecordEpoch(p.ValidationLoss)
		}
		if onProgress != nil {
			onProgress(p)
		}
	})

	var metrics *score.Metrics
	if err == nil {
		metrics, err = score.Compute(res.Actuals, res.Predictions, res.TrainingLoss, res.ValidationLoss)
		if err != nil {
			res.Release()
			err = fmt.Errorf("unable to score trained model, %w", err)
		}
	}
	if err == nil {
		err = f.commit(runCtx, res, metrics)
	}

	f.recorder.RecordTraining(outcome(err), time.Since(start))
	if err != nil {
		if !structural(err) && !cancelled(err) {
			f.discard(nil, "training failed")
		}
		f.logger.Warn("training failed", "error", err.Error(), "duration", time.Since(start))
		return err
	}

	attrs := []any{
		"duration", time.Since(start),
		"params", res.Model.NumParams(),
		"validation_loss", res.ValidationLoss[len(res.ValidationLoss)-1],
		"rmse", metrics.RMSE,
	}
	if res.BaselineLoss != nil {
		attrs = append(attrs, "baseline_loss", *res.BaselineLoss)
	}
	f.logger.Info("training complete", attrs...)
	return nil
}

// commit installs a trained result unless the run was superseded or invalidated. The run context
// is checked under mu since Invalidate cancels it before taking mu.
func (f *Forecaster) commit(runCtx context.Context, res *forecast.Result, metrics *score.Metrics) error {
	f.mu.Lock()
	if err := runCtx.Err(); err != nil {
		f.mu.Unlock()
		res.Release()
		return fmt.Errorf("training superseded, %w", err)
	}
	old := f.model
	f.model = res.Model
	f.result = res
	f.metrics = metrics
	f.history = res.Series
	f.latest = nil
	f.mu.Unlock()

	old.Release()
	return nil
}

// discard clears and releases the current model. If model is non-nil it is only discarded while it
// is still the current one.
func (f *Forecaster) discard(model *forecast.Model, reason string) {
	f.mu.Lock()
	current := f.model
	if current == nil || (model != nil && current != model) {
		f.mu.Unlock()
		return
	}
	f.model = nil
	f.result = nil
	f.metrics = nil
	f.history = nil
	f.latest = nil
	f.mu.Unlock()

	f.logger.Info("model released", "reason", reason)
	current.Release()
}

// Predict forecasts horizon hours past the newest of the recent observations. A horizon below 1
// uses the session's default horizon.
func (f *Forecaster) Predict(ctx context.Context, recent []observation.Observation, horizon int) ([]forecast.PredictionChunk, error) {
	if horizon < 1 {
		horizon = f.opt.Horizon
	}

	f.mu.RLock()
	model := f.model
	f.mu.RUnlock()
	if model == nil {
		return nil, ErrModelNotTrained
	}

	chunks, err := forecast.Predict(ctx, model, recent, horizon, nil)
	if err != nil {
		if errors.Is(err, ErrNumericFailure) {
			f.discard(model, "numeric failure")
		}
		return nil, err
	}
	f.recorder.RecordChunks(len(chunks))

	f.mu.Lock()
	if f.model == model {
		f.latest = newResults(chunks, f.metrics)
		f.latest.SessionID = f.id
		f.latest.Location = f.opt.Location
		f.latest.TrainedAt = model.TrainedAt()
		f.latest.BaselineLoss = f.result.BaselineLoss
	}
	f.mu.Unlock()

	f.logger.Debug("forecast complete", "horizon", horizon, "start", chunks[0].StartTime)
	return chunks, nil
}

// Metrics returns the validation metrics of the current model
func (f *Forecaster) Metrics() (*score.Metrics, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.model == nil {
		return nil, ErrModelNotTrained
	}
	return f.metrics, nil
}

// Result returns the training result of the current model
func (f *Forecaster) Result() (*forecast.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.model == nil {
		return nil, ErrModelNotTrained
	}
	return f.result, nil
}

// Results returns the latest forecast of the current model
func (f *Forecaster) Results() (*Results, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.model == nil {
		return nil, ErrModelNotTrained
	}
	if f.latest == nil {
		return nil, ErrNoForecast
	}
	return f.latest, nil
}

// TrainingData returns the observations the current model was trained on
func (f *Forecaster) TrainingData() observation.Series {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.history
}

// Invalidate cancels any in-flight training and releases the current model. It is used when the
// location or configuration changes.
func (f *Forecaster) Invalidate() {
	f.stop()
	f.discard(nil, "invalidated")
}

// Close releases every resource held by the session
func (f *Forecaster) Close() {
	f.Invalidate()
}
