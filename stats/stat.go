// Package stats computes the per column standardization statistics of a training matrix and
// applies them to feature vectors.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is added to every standard deviation so constant columns do not divide by zero
const Epsilon = 1e-6

var (
	ErrNoRows             = errors.New("no rows to compute statistics from")
	ErrFeatureLenMismatch = errors.New("some row length is not consistent")
	ErrReleased           = errors.New("statistics have been released")
)

// Stats holds the mean and standard deviation of each column. Once computed for a training run
// the values are fixed and reused for every later normalization of that model.
type Stats struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Compute returns the population mean and standard deviation of each column of the row major
// matrix.
func Compute(rows [][]float64) (*Stats, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	n := len(rows[0])
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns instead of %d, %w", i, len(row), n, ErrFeatureLenMismatch)
		}
	}

	s := &Stats{
		Mean: make([]float64, n),
		Std:  make([]float64, n),
	}
	col := make([]float64, len(rows))
	for j := 0; j < n; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Std[j] = math.Sqrt(math.Max(variance, 0)) + Epsilon
	}
	return s, nil
}

// Width returns the number of columns the statistics were computed over
func (s *Stats) Width() int {
	return len(s.Mean)
}

func (s *Stats) check(v []float64) error {
	if s == nil || s.Mean == nil {
		return ErrReleased
	}
	if len(v) != len(s.Mean) {
		return fmt.Errorf("got %d columns, expected %d, %w", len(v), len(s.Mean), ErrFeatureLenMismatch)
	}
	return nil
}

// Normalize writes the standardized vector into dst. If dst is nil a new slice is allocated.
// dst may alias v.
func (s *Stats) Normalize(dst, v []float64) ([]float64, error) {
	if err := s.check(v); err != nil {
		return nil, err
	}
	if dst == nil {
		dst = make([]float64, len(v))
	}
	floats.SubTo(dst, v, s.Mean)
	floats.Div(dst, s.Std)
	return dst, nil
}

// Denormalize is the inverse of Normalize for the same statistics. dst may alias v.
func (s *Stats) Denormalize(dst, v []float64) ([]float64, error) {
	if err := s.check(v); err != nil {
		return nil, err
	}
	if dst == nil {
		dst = make([]float64, len(v))
	}
	floats.MulTo(dst, v, s.Std)
	floats.Add(dst, s.Mean)
	return dst, nil
}

// NormalizeRows standardizes every row in place
func (s *Stats) NormalizeRows(rows [][]float64) error {
	for i, row := range rows {
		if _, err := s.Normalize(row, row); err != nil {
			return fmt.Errorf("row %d, %w", i, err)
		}
	}
	return nil
}

// Release drops the backing slices. Any later use returns ErrReleased.
func (s *Stats) Release() {
	if s == nil {
		return
	}
	s.Mean = nil
	s.Std = nil
}
