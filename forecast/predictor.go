package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/aouyang1/go-windcaster/observation"
	"github.com/aouyang1/go-windcaster/window"
)

// PredictionChunk is the forecast for one hour
type PredictionChunk struct {
	StartTime  time.Time               `json:"start_time"`
	EndTime    time.Time               `json:"end_time"`
	Forecast   observation.Observation `json:"forecast"`
	Confidence float64                 `json:"confidence"`
}

// Confidence decays linearly with the step index and never goes below zero
func Confidence(step int, decayRate float64) float64 {
	return math.Max(0, 1-float64(step)*decayRate)
}

// Predict rolls the model forward horizon hours from the newest observations. Each step feeds the
// first predicted hour back into the input window. Any non-finite output fails the whole call and
// no partial forecast is returned.
func Predict(ctx context.Context, model *Model, recent []observation.Observation, horizon int, onProgress ProgressFunc) ([]PredictionChunk, error) {
	if model == nil {
		return nil, ErrModelNotTrained
	}
	if horizon < 1 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}

	model.mu.Lock()
	defer model.mu.Unlock()
	if model.net.Released() {
		return nil, ErrModelNotTrained
	}

	opt := model.opt
	series, err := observation.NewSeries(recent)
	if err != nil {
		return nil, fmt.Errorf("unable to predict from observations, %w", err)
	}
	if len(series) < opt.TimeSteps {
		return nil, fmt.Errorf(
			"%d observations for %d time steps, %w",
			len(series), opt.TimeSteps, window.ErrInsufficientData,
		)
	}
	series = series.Last(opt.TimeSteps)
	if opt.IncludeMarine {
		if err := series.RequireMarine(); err != nil {
			return nil, err
		}
	}

	set := model.set
	width := set.Width()
	rows, err := set.Matrix(series)
	if err != nil {
		return nil, err
	}
	if err := model.stats.NormalizeRows(rows); err != nil {
		return nil, err
	}
	input := make([]float64, opt.TimeSteps*width)
	for i, row := range rows {
		copy(input[i*width:(i+1)*width], row)
	}

	last := series[len(series)-1].Time
	raw := make([]float64, width)
	chunks := make([]PredictionChunk, 0, horizon)
	for step := 0; step < horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("forecast stopped at step %d, %w", step, err)
		}

		out, err := model.net.Predict(input)
		if err != nil {
			return nil, err
		}
		if _, err := model.stats.Denormalize(raw, out[:width]); err != nil {
			return nil, err
		}
		for i, v := range raw {
			if !finite(v) {
				return nil, fmt.Errorf(
					"step %d column %s is %f, %w",
					step, set.Labels().Labels()[i], v, ErrNumericFailure,
				)
			}
		}

		start := last.Add(time.Duration(step+1) * time.Hour)
		pred, err := set.Decode(raw, start)
		if err != nil {
			return nil, err
		}
		clamp(&pred)

		chunks = append(chunks, PredictionChunk{
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Forecast:   pred,
			Confidence: Confidence(step, *opt.DecayRate),
		})

		// slide the window and append the clamped prediction re-encoded in normalized units
		copy(input, input[width:])
		next := input[len(input)-width:]
		if _, err := set.Encode(pred, next); err != nil {
			return nil, err
		}
		if _, err := model.stats.Normalize(next, next); err != nil {
			return nil, err
		}

		onProgress.emit(Progress{
			CurrentEpoch: step + 1,
			TotalEpochs:  horizon,
			Stage:        StagePredicting,
		})
	}
	return chunks, nil
}

// clamp enforces the physical bounds of every variable
func clamp(o *observation.Observation) {
	o.WindSpeed = math.Max(o.WindSpeed, 0)
	o.WindGusts = math.Max(o.WindGusts, o.WindSpeed)
	o.WindDirection = feature.WrapDegrees(o.WindDirection)
	o.Humidity = math.Min(math.Max(o.Humidity, 0), 100)
	if o.WaveHeight != nil {
		*o.WaveHeight = math.Max(*o.WaveHeight, 0)
	}
	if o.WavePeriod != nil {
		*o.WavePeriod = math.Max(*o.WavePeriod, 0)
	}
	if o.SwellDirection != nil {
		*o.SwellDirection = feature.WrapDegrees(*o.SwellDirection)
	}
}
