// Package score measures how well held out predictions match the observed values.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-windcaster/feature"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BinWidth is the width of every error distribution bin in the units of the variable
const BinWidth = 0.5

// MaxBins bounds the error distribution. Larger errors are counted in the last bin.
const MaxBins = 200

// z score of a two sided 95% interval
const z95 = 1.96

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoSamples      = errors.New("no samples to score")
	ErrNonFinite      = errors.New("predicted or actual value is not finite")
)

// IntervalFactors scale the RMSE of the primary variable into an interval for each variable
var IntervalFactors = map[feature.Variable]float64{
	feature.WindSpeed:      1.0,
	feature.WindGusts:      1.3,
	feature.Temperature:    0.8,
	feature.Humidity:       2.5,
	feature.WindDirection:  15,
	feature.WaveHeight:     0.3,
	feature.WavePeriod:     1.0,
	feature.SwellDirection: 15,
}

func check(predicted, actual []float64) error {
	if len(predicted) != len(actual) {
		return fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return ErrNoSamples
	}
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsInf(actual[i], 0) || math.IsNaN(predicted[i]) || math.IsInf(predicted[i], 0) {
			return fmt.Errorf("sample %d, %w", i, ErrNonFinite)
		}
	}
	return nil
}

// MSE computes the mean squared error. A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	if err := check(predicted, actual); err != nil {
		return 0, err
	}
	mse := 0.0
	for i := 0; i < len(actual); i++ {
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	return mse / float64(len(actual)), nil
}

// RMSE is the square root of the mean squared error
func RMSE(predicted, actual []float64) (float64, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error
func MAE(predicted, actual []float64) (float64, error) {
	if err := check(predicted, actual); err != nil {
		return 0, err
	}
	return floats.Distance(predicted, actual, 1) / float64(len(actual)), nil
}

// RSquared computes the coefficient of determination. When the actual values are constant the
// score is 1 for a perfect match and NaN otherwise.
func RSquared(predicted, actual []float64) (float64, error) {
	if err := check(predicted, actual); err != nil {
		return 0, err
	}
	mean := stat.Mean(actual, nil)
	var ssTot, ssRes float64
	for i := range actual {
		ssTot += (actual[i] - mean) * (actual[i] - mean)
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return math.NaN(), nil
	}
	return stat.RSquaredFrom(predicted, actual, nil), nil
}

// ErrorDistribution bins the absolute errors into BinWidth wide bins spanning [0, ceil(max error)]
// and returns the percentage of samples in each bin. Errors on the upper edge fall into the last
// bin as do errors beyond MaxBins bins. If every error is zero a single bin holds all samples.
func ErrorDistribution(predicted, actual []float64) ([]float64, error) {
	if err := check(predicted, actual); err != nil {
		return nil, err
	}
	errs := make([]float64, len(actual))
	floats.SubTo(errs, predicted, actual)
	for i := range errs {
		errs[i] = math.Abs(errs[i])
	}

	numBins := int(math.Min(math.Ceil(floats.Max(errs))/BinWidth, MaxBins))
	if numBins == 0 {
		return []float64{100}, nil
	}

	dist := make([]float64, numBins)
	pct := 100.0 / float64(len(errs))
	for _, e := range errs {
		idx := min(int(e/BinWidth), numBins-1)
		dist[idx] += pct
	}
	return dist, nil
}

// ConfidenceIntervals returns the half width of a 95% interval for each variable given the RMSE of
// the primary variable
func ConfidenceIntervals(rmse float64, vars []feature.Variable) map[feature.Variable]float64 {
	intervals := make(map[feature.Variable]float64, len(vars))
	for _, v := range vars {
		factor, exists := IntervalFactors[v]
		if !exists {
			continue
		}
		intervals[v] = z95 * rmse * factor
	}
	return intervals
}
