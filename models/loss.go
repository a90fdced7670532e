package models

import "fmt"

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) (float64, error)

	// BackwardInPlace computes the gradient of the loss w.r.t. prediction into grad.
	BackwardInPlace(yPred, yTrue, grad []float64) error
}

// MSE (Mean Squared Error) loss.
type MSE struct{}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue []float64) (float64, error) {
	n := len(yPred)
	if n != len(yTrue) {
		return 0, fmt.Errorf("prediction has %d values and target has %d, %w", n, len(yTrue), ErrTargetLenMismatch)
	}
	if n == 0 {
		return 0, nil
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred[i] - yTrue[i]
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// BackwardInPlace computes dL/dy_pred = (2/n) * (y_pred - y_true)
func (m MSE) BackwardInPlace(yPred, yTrue, grad []float64) error {
	n := len(yPred)
	if n != len(yTrue) || n != len(grad) {
		return fmt.Errorf("prediction has %d values, target %d and gradient %d, %w", n, len(yTrue), len(grad), ErrTargetLenMismatch)
	}

	factor := 2.0 / float64(n)
	for i := 0; i < n; i++ {
		grad[i] = factor * (yPred[i] - yTrue[i])
	}
	return nil
}
