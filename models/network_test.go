package models

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int, rng *rand.Rand) ([][]float64, [][]float64) {
	x := make([][]float64, n)
	y := make([][]float64, n)
	for i := 0; i < n; i++ {
		a, b := rng.Float64()*2-1, rng.Float64()*2-1
		x[i] = []float64{a, b}
		y[i] = []float64{2*a - b + 0.5, -a}
	}
	return x, y
}

func TestNewNetwork(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	testData := map[string]struct {
		layers []Layer
		err    error
	}{
		"no layers": {
			err: ErrNoLayers,
		},
		"size mismatch": {
			layers: []Layer{NewDense(2, 4, ReLU{}, rng), NewDense(3, 1, Linear{}, rng)},
			err:    ErrLayerSizeMismatch,
		},
		"valid": {
			layers: []Layer{NewDense(2, 4, ReLU{}, rng), NewDropout(0.1, 4, rng), NewDense(4, 1, Linear{}, rng)},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n, err := NewNetwork(td.layers, MSE{}, NewAdam(0.01))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, 2, n.InSize())
			assert.Equal(t, 1, n.OutSize())
			assert.Equal(t, 2*4+4+4*1+1, n.NumParams())
		})
	}
}

func TestNewMLP(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	n, err := NewMLP(&MLPOptions{InSize: 10, OutSize: 3, Hidden: []int{8, 6}, Dropout: 0.2, LearningRate: 0.001}, rng)
	require.Nil(t, err)

	// dense, dropout, dense, dropout, dense
	assert.Len(t, n.Layers(), 5)
	assert.Equal(t, 10*8+8+8*6+6+6*3+3, n.NumParams())

	_, err = NewMLP(nil, rng)
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestNetworkLearnsLinearMap(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	x, y := linearData(64, rng)

	n, err := NewNetwork([]Layer{NewDense(2, 2, Linear{}, rng)}, MSE{}, NewAdam(0.05))
	require.Nil(t, err)

	initial, err := n.Evaluate(x, y)
	require.Nil(t, err)

	for epoch := 0; epoch < 400; epoch++ {
		for start := 0; start < len(x); start += 16 {
			_, err := n.TrainBatch(x[start:start+16], y[start:start+16])
			require.Nil(t, err)
		}
	}

	final, err := n.Evaluate(x, y)
	require.Nil(t, err)
	assert.Less(t, final, 1e-3)
	assert.Less(t, final, initial)

	res, err := n.Predict([]float64{0.5, 0.25})
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1.25, -0.5}, res, 0.1)
	assert.True(t, n.Finite())
}

func TestMLPReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	x, y := linearData(64, rng)

	n, err := NewMLP(&MLPOptions{InSize: 2, OutSize: 2, Hidden: []int{16}, LearningRate: 0.01}, rng)
	require.Nil(t, err)

	initial, err := n.Evaluate(x, y)
	require.Nil(t, err)
	for epoch := 0; epoch < 200; epoch++ {
		_, err := n.TrainBatch(x, y)
		require.Nil(t, err)
	}
	final, err := n.Evaluate(x, y)
	require.Nil(t, err)
	assert.Less(t, final, initial/2)
}

func TestNetworkErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	n, err := NewMLP(&MLPOptions{InSize: 2, OutSize: 1, Hidden: []int{4}, LearningRate: 0.01}, rng)
	require.Nil(t, err)

	_, err = n.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	_, err = n.TrainBatch(nil, nil)
	assert.ErrorIs(t, err, ErrNoTrainingData)

	_, err = n.TrainBatch([][]float64{{1, 2}}, [][]float64{{1}, {2}})
	assert.ErrorIs(t, err, ErrTargetLenMismatch)

	_, err = n.TrainBatch([][]float64{{1, 2}}, [][]float64{{1, 2}})
	assert.ErrorIs(t, err, ErrTargetLenMismatch)

	n.Release()
	assert.True(t, n.Released())
	_, err = n.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrReleased)

	// releasing twice is a no-op
	n.Release()
}

func TestNetworkDivergenceDetected(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	n, err := NewNetwork([]Layer{NewDense(1, 1, Linear{}, rng)}, MSE{}, &SGD{LearningRate: 1e6})
	require.Nil(t, err)

	x := [][]float64{{1e3}, {-1e3}}
	y := [][]float64{{1}, {-1}}
	var loss float64
	for i := 0; i < 50 && !math.IsInf(loss, 0) && !math.IsNaN(loss); i++ {
		loss, err = n.TrainBatch(x, y)
		require.Nil(t, err)
	}
	assert.False(t, n.Finite())
}
