package models

import "math"

// Optimizer updates parameter groups in place given their gradients. Groups are identified by
// their position so stateful optimizers can track per group moments.
type Optimizer interface {
	Step(params, gradients [][]float64)
	Reset()
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64
}

func (s *SGD) Step(params, gradients [][]float64) {
	for g := range params {
		for i := range params[g] {
			params[g][i] -= s.LearningRate * gradients[g][i]
		}
	}
}

func (s *SGD) Reset() {}

// Adam optimizer with bias corrected first and second moment estimates.
type Adam struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability

	step int
	m    [][]float64
	v    [][]float64
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

func (a *Adam) init(params [][]float64) {
	a.m = make([][]float64, len(params))
	a.v = make([][]float64, len(params))
	for g := range params {
		a.m[g] = make([]float64, len(params[g]))
		a.v[g] = make([]float64, len(params[g]))
	}
}

// Step applies one Adam update to every group
func (a *Adam) Step(params, gradients [][]float64) {
	if len(a.m) != len(params) {
		a.init(params)
	}
	a.step++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.step))

	for g := range params {
		p, grad, m, v := params[g], gradients[g], a.m[g], a.v[g]
		for i := range p {
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*grad[i]
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*grad[i]*grad[i]
			mHat := m[i] / bc1
			vHat := v[i] / bc2
			p[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
		}
	}
}

// Reset drops the moment estimates and step count
func (a *Adam) Reset() {
	a.step = 0
	a.m = nil
	a.v = nil
}
