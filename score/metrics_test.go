package score

import (
	"math"
	"testing"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	m, err := Compute([]float64{1, 2, 3}, []float64{1, 2, 3}, []float64{0.9, 0.5}, []float64{1.0, 0.7})
	require.Nil(t, err)

	assert.Equal(t, 0.0, m.RMSE)
	assert.Equal(t, 0.0, m.MAE)
	assert.Equal(t, 1.0, m.R2Score)
	assert.Equal(t, 3, m.SampleSize)
	assert.Equal(t, []float64{100}, m.ErrorDistribution)
	assert.Equal(t, BinWidth, m.BinWidth)
	assert.Equal(t, []float64{0.9, 0.5}, m.TrainingLoss)
	assert.Equal(t, []float64{1.0, 0.7}, m.ValidationLoss)
	assert.Len(t, m.ConfidenceIntervals, len(IntervalFactors))
	assert.Equal(t, 0.0, m.ConfidenceIntervals[feature.WindGusts])

	_, err = Compute([]float64{1}, []float64{1, 2}, nil, nil)
	assert.ErrorIs(t, err, ErrResLenMismatch)
}

func TestComputeCopiesInputs(t *testing.T) {
	actuals := []float64{1, 2, 3}
	m, err := Compute(actuals, []float64{1, 2, 4}, nil, nil)
	require.Nil(t, err)

	actuals[0] = 10
	assert.Equal(t, 1.0, m.Actuals[0])
}

func TestMetricsJSON(t *testing.T) {
	m, err := Compute([]float64{5, 5}, []float64{4, 6}, nil, nil)
	require.Nil(t, err)
	require.True(t, math.IsNaN(m.R2Score))

	out, err := json.Marshal(m)
	require.Nil(t, err)
	assert.Contains(t, string(out), `"r2_score":null`)
	assert.Contains(t, string(out), `"rmse":1`)

	var decoded Metrics
	require.Nil(t, json.Unmarshal(out, &decoded))
	assert.True(t, math.IsNaN(decoded.R2Score))
	assert.Equal(t, m.RMSE, decoded.RMSE)
	assert.Equal(t, m.ErrorDistribution, decoded.ErrorDistribution)
	assert.Equal(t, m.ConfidenceIntervals, decoded.ConfidenceIntervals)
	assert.Equal(t, m.Actuals, decoded.Actuals)

	m.R2Score = 0.25
	out, err = json.Marshal(m)
	require.Nil(t, err)
	assert.Contains(t, string(out), `"r2_score":0.25`)

	decoded = Metrics{}
	require.Nil(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 0.25, decoded.R2Score)
	assert.Equal(t, m.SampleSize, decoded.SampleSize)
}
