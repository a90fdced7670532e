package models

import (
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-windcaster/floatsunrolled"
)

// Layer is a neural network layer. Gradients accumulate across Backward calls until
// ZeroGradients is called which allows averaging over a mini-batch.
type Layer interface {
	Forward(x []float64) []float64
	Backward(grad []float64) []float64
	Params() [][]float64
	Gradients() [][]float64
	ZeroGradients()
	SetTraining(training bool)
	InSize() int
	OutSize() int
	Release()
}

// Dense is a fully connected layer.
// Weights are stored row-major in a contiguous slice where the weight for output i, input j is at
// weights[i*in + j]. All buffers are allocated once at construction.
type Dense struct {
	weights []float64
	biases  []float64
	act     Activation
	inSize  int
	outSize int

	inputBuf  []float64
	preActBuf []float64
	outputBuf []float64
	gradWBuf  []float64
	gradBBuf  []float64
	gradInBuf []float64
}

// NewDense creates a dense layer with He initialization drawn from rng
func NewDense(in, out int, act Activation, rng *rand.Rand) *Dense {
	weights := make([]float64, out*in)
	stddev := math.Sqrt(2.0 / float64(in))
	for i := range weights {
		weights[i] = rng.NormFloat64() * stddev
	}

	return &Dense{
		weights:   weights,
		biases:    make([]float64, out),
		act:       act,
		inSize:    in,
		outSize:   out,
		inputBuf:  make([]float64, in),
		preActBuf: make([]float64, out),
		outputBuf: make([]float64, out),
		gradWBuf:  make([]float64, out*in),
		gradBBuf:  make([]float64, out),
		gradInBuf: make([]float64, in),
	}
}

// Forward computes act(Wx + b). The returned slice is owned by the layer and is overwritten on
// the next call.
func (d *Dense) Forward(x []float64) []float64 {
	copy(d.inputBuf, x)

	for o := 0; o < d.outSize; o++ {
		wBase := o * d.inSize
		sum := d.biases[o] + floatsunrolled.Dot(d.weights[wBase:wBase+d.inSize], d.inputBuf)
		d.preActBuf[o] = sum
		d.outputBuf[o] = d.act.Activate(sum)
	}
	return d.outputBuf
}

// Backward accumulates weight and bias gradients for the last Forward input and returns the
// gradient w.r.t. that input.
func (d *Dense) Backward(grad []float64) []float64 {
	floatsunrolled.Zero(d.gradInBuf)
	for o := 0; o < d.outSize; o++ {
		dz := grad[o] * d.act.Derivative(d.preActBuf[o])
		if dz == 0 {
			continue
		}
		d.gradBBuf[o] += dz
		wBase := o * d.inSize
		floatsunrolled.AddScaled(d.gradWBuf[wBase:wBase+d.inSize], dz, d.inputBuf)
		floatsunrolled.AddScaled(d.gradInBuf, dz, d.weights[wBase:wBase+d.inSize])
	}
	return d.gradInBuf
}

// Params returns the weight and bias slices. They are the live buffers so optimizers update
// them in place.
func (d *Dense) Params() [][]float64 {
	return [][]float64{d.weights, d.biases}
}

// Gradients returns the accumulated weight and bias gradients in the same order as Params
func (d *Dense) Gradients() [][]float64 {
	return [][]float64{d.gradWBuf, d.gradBBuf}
}

func (d *Dense) ZeroGradients() {
	floatsunrolled.Zero(d.gradWBuf)
	floatsunrolled.Zero(d.gradBBuf)
}

func (d *Dense) SetTraining(training bool) {}

func (d *Dense) InSize() int {
	return d.inSize
}

func (d *Dense) OutSize() int {
	return d.outSize
}

func (d *Dense) Release() {
	d.weights = nil
	d.biases = nil
	d.inputBuf = nil
	d.preActBuf = nil
	d.outputBuf = nil
	d.gradWBuf = nil
	d.gradBBuf = nil
	d.gradInBuf = nil
}

// Dropout implements inverted dropout regularization.
// During training inputs are zeroed with probability p and survivors are scaled by 1/(1-p).
// During inference inputs pass through unchanged.
type Dropout struct {
	p        float64
	training bool
	size     int
	rng      *rand.Rand

	maskBuf   []float64
	outputBuf []float64
	gradInBuf []float64
}

// NewDropout creates a dropout layer drawing its masks from rng
func NewDropout(p float64, size int, rng *rand.Rand) *Dropout {
	return &Dropout{
		p:         p,
		training:  true,
		size:      size,
		rng:       rng,
		maskBuf:   make([]float64, size),
		outputBuf: make([]float64, size),
		gradInBuf: make([]float64, size),
	}
}

func (d *Dropout) Forward(x []float64) []float64 {
	if !d.training || d.p <= 0 {
		for i := range d.maskBuf {
			d.maskBuf[i] = 1
		}
		copy(d.outputBuf, x)
		return d.outputBuf
	}

	scale := 1.0 / (1.0 - d.p)
	for i := 0; i < d.size; i++ {
		if d.rng.Float64() < d.p {
			d.maskBuf[i] = 0
		} else {
			d.maskBuf[i] = scale
		}
		d.outputBuf[i] = x[i] * d.maskBuf[i]
	}
	return d.outputBuf
}

func (d *Dropout) Backward(grad []float64) []float64 {
	for i := 0; i < d.size; i++ {
		d.gradInBuf[i] = grad[i] * d.maskBuf[i]
	}
	return d.gradInBuf
}

// Params returns nil since dropout has no learnable parameters
func (d *Dropout) Params() [][]float64 {
	return nil
}

func (d *Dropout) Gradients() [][]float64 {
	return nil
}

func (d *Dropout) ZeroGradients() {}

func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// P returns the dropout probability
func (d *Dropout) P() float64 {
	return d.p
}

func (d *Dropout) InSize() int {
	return d.size
}

func (d *Dropout) OutSize() int {
	return d.size
}

func (d *Dropout) Release() {
	d.maskBuf = nil
	d.outputBuf = nil
	d.gradInBuf = nil
}
