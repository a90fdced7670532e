// Package models holds the regression models fit by the forecaster: a feed-forward network trained
// with mini-batch gradient descent and an ordinary least squares baseline.
package models

// Regressor maps a flattened input window to a flattened multi-step output
type Regressor interface {
	Predict(x []float64) ([]float64, error)
	InSize() int
	OutSize() int
	Release()
}

var (
	_ Regressor = (*Network)(nil)
	_ Regressor = (*OLSRegression)(nil)
)
