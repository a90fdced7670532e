// Package forecast trains a feed-forward network on windows of hourly observations and rolls it
// forward to produce an hours ahead forecast.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/aouyang1/go-windcaster/models"
	"github.com/aouyang1/go-windcaster/observation"
	"github.com/aouyang1/go-windcaster/stats"
	"github.com/aouyang1/go-windcaster/window"
)

// PrimaryVariable is reported in the flat Actuals and Predictions of a training result
const PrimaryVariable = feature.WindSpeed

// Pairs are the held out actual and predicted values of one variable
type Pairs struct {
	Actuals     []float64 `json:"actuals"`
	Predictions []float64 `json:"predictions"`
}

// Result is the outcome of a training run
type Result struct {
	Model *Model `json:"-"`

	TrainingLoss    []float64                   `json:"training_loss"`
	ValidationLoss  []float64                   `json:"validation_loss"`
	Actuals         []float64                   `json:"actuals"`
	Predictions     []float64                   `json:"predictions"`
	ValidationPairs map[feature.Variable]*Pairs `json:"validation_pairs"`

	// BaselineLoss is the validation loss of a linear fit on the same windows. It is nil if the
	// baseline could not be fit.
	BaselineLoss *float64 `json:"baseline_loss,omitempty"`

	// Series is the validated, time sorted training data
	Series observation.Series `json:"-"`
}

// Release frees the trained model
func (r *Result) Release() {
	if r == nil {
		return
	}
	r.Model.Release()
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5bd1e995))
}

// Train fits a model on the observations. Structural problems with the options or observations are
// reported before any buffers are allocated. The context is checked between epochs and a cancelled
// run returns the context error. No model is returned on any error.
func Train(ctx context.Context, obs []observation.Observation, opt *Options, onProgress ProgressFunc) (*Result, error) {
	opt, err := opt.Resolve()
	if err != nil {
		return nil, err
	}

	series, err := observation.NewSeries(obs)
	if err != nil {
		return nil, fmt.Errorf("unable to train on observations, %w", err)
	}
	if opt.IncludeMarine {
		if err := series.RequireMarine(); err != nil {
			return nil, err
		}
	}
	count := window.Count(len(series), opt.TimeSteps, opt.PredictionSteps)
	if count < 1 {
		return nil, fmt.Errorf(
			"%d observations for %d time steps and %d prediction steps, %w",
			len(series), opt.TimeSteps, opt.PredictionSteps, window.ErrInsufficientData,
		)
	}
	nTrain, err := window.TrainLen(count, opt.ValidationSplit)
	if err != nil {
		return nil, fmt.Errorf("unable to hold out validation windows, %w", err)
	}

	onProgress.emit(Progress{Stage: StageInitializing, TotalEpochs: opt.Epochs})

	set := feature.NewSet(opt.IncludeMarine)
	rows, err := set.Matrix(series)
	if err != nil {
		return nil, err
	}
	// held out rows do not contribute to the normalization
	st, err := stats.Compute(rows[:window.Rows(nTrain, opt.TimeSteps, opt.PredictionSteps)])
	if err != nil {
		return nil, err
	}
	if err := st.NormalizeRows(rows); err != nil {
		st.Release()
		return nil, err
	}

	ds, err := window.New(rows, opt.TimeSteps, opt.PredictionSteps)
	if err != nil {
		st.Release()
		return nil, err
	}
	defer ds.Release()

	train, val, err := ds.Split(opt.ValidationSplit)
	if err != nil {
		st.Release()
		return nil, err
	}

	rng := newRand(opt.Seed)
	net, err := models.NewMLP(&models.MLPOptions{
		InSize:       ds.InputSize(),
		OutSize:      ds.OutputSize(),
		Hidden:       opt.HiddenLayers(),
		Dropout:      opt.Dropout(),
		LearningRate: opt.LearningRate,
	}, rng)
	if err != nil {
		st.Release()
		return nil, err
	}

	var trained bool
	defer func() {
		if !trained {
			net.Release()
			st.Release()
		}
	}()

	slog.Debug("training network",
		"pairs", ds.Len(), "train_pairs", train.Len(), "validation_pairs", val.Len(),
		"params", net.NumParams(), "epochs", opt.Epochs,
	)

	res := &Result{
		TrainingLoss:   make([]float64, 0, opt.Epochs),
		ValidationLoss: make([]float64, 0, opt.Epochs),
	}
	order := make([]int, train.Len())
	for i := range order {
		order[i] = i
	}
	batchX := make([][]float64, 0, opt.BatchSize)
	batchY := make([][]float64, 0, opt.BatchSize)

	for epoch := 1; epoch <= opt.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training stopped at epoch %d, %w", epoch, err)
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var total float64
		for start := 0; start < len(order); start += opt.BatchSize {
			end := min(start+opt.BatchSize, len(order))
			batchX, batchY = batchX[:0], batchY[:0]
			for _, idx := range order[start:end] {
				batchX = append(batchX, train.X[idx])
				batchY = append(batchY, train.Y[idx])
			}
			loss, err := net.TrainBatch(batchX, batchY)
			if err != nil {
				return nil, err
			}
			total += loss * float64(end-start)
		}
		trainLoss := total / float64(len(order))

		valLoss, err := net.Evaluate(val.X, val.Y)
		if err != nil {
			return nil, err
		}

		if !finite(trainLoss) || !finite(valLoss) || !net.Finite() {
			return nil, fmt.Errorf(
				"epoch %d has training loss %f and validation loss %f, %w",
				epoch, trainLoss, valLoss, ErrTrainingDivergence,
			)
		}

		res.TrainingLoss = append(res.TrainingLoss, trainLoss)
		res.ValidationLoss = append(res.ValidationLoss, valLoss)
		onProgress.emit(Progress{
			CurrentEpoch:   epoch,
			TotalEpochs:    opt.Epochs,
			Loss:           trainLoss,
			ValidationLoss: valLoss,
			Stage:          StageTraining,
		})
		slog.Debug("epoch complete", "epoch", epoch, "loss", trainLoss, "validation_loss", valLoss)
	}

	// the first validation pair's target row follows the last training window
	firstTarget := train.Len() + opt.TimeSteps
	pairs, err := validationPairs(net, st, set, val, series[firstTarget:])
	if err != nil {
		return nil, err
	}
	res.ValidationPairs = pairs
	res.Series = series
	res.Actuals = pairs[PrimaryVariable].Actuals
	res.Predictions = pairs[PrimaryVariable].Predictions

	if loss, err := baselineLoss(train, val); err != nil {
		slog.Warn("skipping linear baseline", "error", err.Error())
	} else {
		res.BaselineLoss = &loss
	}

	res.Model = &Model{
		opt:       *opt,
		set:       set,
		stats:     st,
		net:       net,
		trainedAt: time.Now(),
		lastTime:  series[len(series)-1].Time,
	}
	trained = true
	return res, nil
}

// validationPairs denormalizes the first predicted step of every held out window and pairs it with
// the observed values. Predicted angles are unwrapped to lie within 180 degrees of the actual so
// errors measure the shortest arc.
func validationPairs(net *models.Network, st *stats.Stats, set *feature.Set, val *window.Dataset, targets observation.Series) (map[feature.Variable]*Pairs, error) {
	width := set.Width()
	pairs := make(map[feature.Variable]*Pairs)
	for _, v := range set.Variables() {
		pairs[v] = &Pairs{
			Actuals:     make([]float64, 0, val.Len()),
			Predictions: make([]float64, 0, val.Len()),
		}
	}

	raw := make([]float64, width)
	for i := range val.X {
		out, err := net.Predict(val.X[i])
		if err != nil {
			return nil, err
		}
		if _, err := st.Denormalize(raw, out[:width]); err != nil {
			return nil, err
		}
		actual := targets[i]
		pred, err := set.Decode(raw, actual.Time)
		if err != nil {
			return nil, err
		}
		clamp(&pred)

		for _, v := range set.Variables() {
			a, _ := feature.Value(actual, v)
			p, _ := feature.Value(pred, v)
			if v.Circular() {
				p = a + angleDiff(p, a)
			}
			pairs[v].Actuals = append(pairs[v].Actuals, a)
			pairs[v].Predictions = append(pairs[v].Predictions, p)
		}
	}
	return pairs, nil
}

// baselineLoss fits a least squares model from the newest row of each training window to its
// targets and returns the mean squared error on the validation windows in normalized units.
func baselineLoss(train, val *window.Dataset) (float64, error) {
	lastRow := func(d *window.Dataset) [][]float64 {
		x := make([][]float64, d.Len())
		for i := range d.X {
			x[i] = d.X[i][(d.TimeSteps-1)*d.Width:]
		}
		return x
	}

	ols, err := models.NewOLSRegression(nil)
	if err != nil {
		return 0, err
	}
	defer ols.Release()

	if err := ols.Fit(lastRow(train), train.Y); err != nil {
		return 0, err
	}
	return meanLoss(ols, lastRow(val), val.Y)
}

func meanLoss(r models.Regressor, x, y [][]float64) (float64, error) {
	if len(x) == 0 {
		return 0, models.ErrNoTrainingData
	}
	var total float64
	loss := models.MSE{}
	for i := range x {
		pred, err := r.Predict(x[i])
		if err != nil {
			return 0, err
		}
		l, err := loss.Forward(pred, y[i])
		if err != nil {
			return 0, err
		}
		total += l
	}
	mse := total / float64(len(x))
	if !finite(mse) {
		return 0, fmt.Errorf("baseline loss is %f, %w", mse, ErrNumericFailure)
	}
	return mse, nil
}

// angleDiff returns the signed shortest difference a-b in degrees on (-180, 180]
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
