package models

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Network is a feed-forward stack of layers compiled with a loss and optimizer.
type Network struct {
	layers []Layer
	loss   Loss
	opt    Optimizer

	params    [][]float64
	gradients [][]float64

	// pre-allocated gradient buffer for the loss
	lossGradBuf []float64
	released    bool
}

// NewNetwork checks that consecutive layer sizes line up and compiles the network.
func NewNetwork(layers []Layer, loss Loss, optimizer Optimizer) (*Network, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if loss == nil || optimizer == nil {
		return nil, ErrNoOptions
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1].OutSize() != layers[i].InSize() {
			return nil, fmt.Errorf(
				"layer %d outputs %d but layer %d expects %d, %w",
				i-1, layers[i-1].OutSize(), i, layers[i].InSize(), ErrLayerSizeMismatch,
			)
		}
	}

	n := &Network{
		layers:      layers,
		loss:        loss,
		opt:         optimizer,
		lossGradBuf: make([]float64, layers[len(layers)-1].OutSize()),
	}
	for _, l := range layers {
		n.params = append(n.params, l.Params()...)
		n.gradients = append(n.gradients, l.Gradients()...)
	}
	return n, nil
}

// MLPOptions sizes a multi-layer perceptron with ReLU hidden layers and a linear output
type MLPOptions struct {
	InSize       int
	OutSize      int
	Hidden       []int
	Dropout      float64 // applied after every hidden layer when greater than 0
	LearningRate float64
}

// NewMLP builds and compiles an MLP with MSE loss and the Adam optimizer
func NewMLP(opt *MLPOptions, rng *rand.Rand) (*Network, error) {
	if opt == nil {
		return nil, ErrNoOptions
	}
	var layers []Layer
	in := opt.InSize
	for _, h := range opt.Hidden {
		layers = append(layers, NewDense(in, h, ReLU{}, rng))
		if opt.Dropout > 0 {
			layers = append(layers, NewDropout(opt.Dropout, h, rng))
		}
		in = h
	}
	layers = append(layers, NewDense(in, opt.OutSize, Linear{}, rng))
	return NewNetwork(layers, MSE{}, NewAdam(opt.LearningRate))
}

// InSize returns the input size of the first layer
func (n *Network) InSize() int {
	return n.layers[0].InSize()
}

// OutSize returns the output size of the last layer
func (n *Network) OutSize() int {
	return n.layers[len(n.layers)-1].OutSize()
}

// Layers returns the network's layers
func (n *Network) Layers() []Layer {
	return n.layers
}

// NumParams returns the number of learnable parameters
func (n *Network) NumParams() int {
	var total int
	for _, p := range n.params {
		total += len(p)
	}
	return total
}

// SetTraining toggles training behaviour such as dropout on every layer
func (n *Network) SetTraining(training bool) {
	for _, l := range n.layers {
		l.SetTraining(training)
	}
}

func (n *Network) forward(x []float64) []float64 {
	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr
}

func (n *Network) backward(grad []float64) {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
	}
}

func (n *Network) check(x []float64) error {
	if n == nil || n.released {
		return ErrReleased
	}
	if len(x) != n.InSize() {
		return fmt.Errorf("got %d inputs, expected %d, %w", len(x), n.InSize(), ErrFeatureLenMismatch)
	}
	return nil
}

// Predict runs a forward pass in inference mode and returns a copy of the output
func (n *Network) Predict(x []float64) ([]float64, error) {
	if err := n.check(x); err != nil {
		return nil, err
	}
	n.SetTraining(false)
	out := n.forward(x)
	res := make([]float64, len(out))
	copy(res, out)
	return res, nil
}

// TrainBatch accumulates gradients over the batch, averages them and applies a single optimizer
// step. The mean loss over the batch is returned.
func (n *Network) TrainBatch(batchX, batchY [][]float64) (float64, error) {
	if len(batchX) == 0 {
		return 0, ErrNoTrainingData
	}
	if len(batchX) != len(batchY) {
		return 0, fmt.Errorf("batch has %d inputs and %d targets, %w", len(batchX), len(batchY), ErrTargetLenMismatch)
	}

	n.SetTraining(true)
	for _, l := range n.layers {
		l.ZeroGradients()
	}

	var totalLoss float64
	for i := range batchX {
		if err := n.check(batchX[i]); err != nil {
			return 0, err
		}
		yPred := n.forward(batchX[i])
		l, err := n.loss.Forward(yPred, batchY[i])
		if err != nil {
			return 0, err
		}
		totalLoss += l

		if err := n.loss.BackwardInPlace(yPred, batchY[i], n.lossGradBuf); err != nil {
			return 0, err
		}
		n.backward(n.lossGradBuf)
	}

	batchSize := float64(len(batchX))
	for _, grads := range n.gradients {
		for i := range grads {
			grads[i] /= batchSize
		}
	}
	n.opt.Step(n.params, n.gradients)
	return totalLoss / batchSize, nil
}

// Evaluate returns the mean loss over the samples in inference mode
func (n *Network) Evaluate(x, y [][]float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrNoTrainingData
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("got %d inputs and %d targets, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	n.SetTraining(false)

	var total float64
	for i := range x {
		if err := n.check(x[i]); err != nil {
			return 0, err
		}
		l, err := n.loss.Forward(n.forward(x[i]), y[i])
		if err != nil {
			return 0, err
		}
		total += l
	}
	return total / float64(len(x)), nil
}

// Finite returns false if any parameter has become NaN or infinite
func (n *Network) Finite() bool {
	for _, p := range n.params {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Release frees every layer buffer and the optimizer state. The network cannot be used afterwards.
func (n *Network) Release() {
	if n == nil || n.released {
		return
	}
	for _, l := range n.layers {
		l.Release()
	}
	n.opt.Reset()
	n.params = nil
	n.gradients = nil
	n.lossGradBuf = nil
	n.released = true
}

// Released returns true once Release has been called
func (n *Network) Released() bool {
	return n == nil || n.released
}
