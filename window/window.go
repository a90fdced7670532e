// Package window slices a chronological feature matrix into fixed length input windows and the
// target rows that follow each of them.
package window

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInsufficientData   = errors.New("insufficient data for window and horizon")
	ErrInvalidWindow      = errors.New("time steps and horizon must be at least 1")
	ErrFeatureLenMismatch = errors.New("some row length is not consistent")
	ErrInvalidFraction    = errors.New("validation fraction must be in [0, 1)")
)

// Dataset is a set of (input, label) pairs. Inputs are TimeSteps rows flattened oldest first and
// labels are the Horizon rows that follow, also flattened. All pairs are views into one arena
// which is freed by Release.
type Dataset struct {
	X [][]float64
	Y [][]float64

	TimeSteps int
	Horizon   int
	Width     int

	arena []float64
}

// Count returns the number of pairs produced for n rows which is max(0, n-timeSteps-horizon+1)
func Count(n, timeSteps, horizon int) int {
	c := n - timeSteps - horizon + 1
	if c < 0 {
		return 0
	}
	return c
}

// New windows the rows. The shape is checked before any buffer is allocated.
func New(rows [][]float64, timeSteps, horizon int) (*Dataset, error) {
	if timeSteps < 1 || horizon < 1 {
		return nil, fmt.Errorf("got time steps %d and horizon %d, %w", timeSteps, horizon, ErrInvalidWindow)
	}
	count := Count(len(rows), timeSteps, horizon)
	if count <= 0 {
		return nil, fmt.Errorf(
			"%d rows cannot fill a window of %d with a horizon of %d, %w",
			len(rows), timeSteps, horizon, ErrInsufficientData,
		)
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns instead of %d, %w", i, len(row), width, ErrFeatureLenMismatch)
		}
	}

	inLen := timeSteps * width
	outLen := horizon * width
	d := &Dataset{
		X:         make([][]float64, count),
		Y:         make([][]float64, count),
		TimeSteps: timeSteps,
		Horizon:   horizon,
		Width:     width,
		arena:     make([]float64, count*(inLen+outLen)),
	}

	offset := 0
	for i := 0; i < count; i++ {
		x := d.arena[offset : offset+inLen : offset+inLen]
		for s := 0; s < timeSteps; s++ {
			copy(x[s*width:(s+1)*width], rows[i+s])
		}
		offset += inLen

		y := d.arena[offset : offset+outLen : offset+outLen]
		for h := 0; h < horizon; h++ {
			copy(y[h*width:(h+1)*width], rows[i+timeSteps+h])
		}
		offset += outLen

		d.X[i] = x
		d.Y[i] = y
	}
	return d, nil
}

// Len returns the number of pairs
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.X)
}

// InputSize is the length of a flattened input window
func (d *Dataset) InputSize() int {
	return d.TimeSteps * d.Width
}

// OutputSize is the length of a flattened label
func (d *Dataset) OutputSize() int {
	return d.Horizon * d.Width
}

// Split holds out the chronologically last fraction of pairs for validation. Both halves share
// the parent arena so only the parent needs to be released. A non-zero fraction always holds out
// at least one pair and leaves at least one for training.
func (d *Dataset) Split(fraction float64) (*Dataset, *Dataset, error) {
	n := d.Len()
	nTrain, err := TrainLen(n, fraction)
	if err != nil {
		return nil, nil, err
	}

	train := d.view(0, nTrain)
	val := d.view(nTrain, n)
	return train, val, nil
}

// TrainLen returns how many of n pairs Split keeps for training
func TrainLen(n int, fraction float64) (int, error) {
	if fraction < 0 || fraction >= 1 || math.IsNaN(fraction) {
		return 0, fmt.Errorf("got %.3f, %w", fraction, ErrInvalidFraction)
	}
	nVal := int(math.Round(fraction * float64(n)))
	if fraction > 0 && nVal == 0 {
		nVal = 1
	}
	nTrain := n - nVal
	if nTrain < 1 {
		return 0, fmt.Errorf("%d pairs cannot be split with fraction %.3f, %w", n, fraction, ErrInsufficientData)
	}
	return nTrain, nil
}

// Rows returns the number of leading rows spanned by the first k pairs
func Rows(k, timeSteps, horizon int) int {
	if k < 1 {
		return 0
	}
	return k + timeSteps + horizon - 1
}

func (d *Dataset) view(start, end int) *Dataset {
	return &Dataset{
		X:         d.X[start:end:end],
		Y:         d.Y[start:end:end],
		TimeSteps: d.TimeSteps,
		Horizon:   d.Horizon,
		Width:     d.Width,
	}
}

// Release drops the arena and every pair view into it
func (d *Dataset) Release() {
	if d == nil {
		return
	}
	d.X = nil
	d.Y = nil
	d.arena = nil
}
