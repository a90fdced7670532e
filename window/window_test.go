package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateRows(n, width int) [][]float64 {
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, width)
		for j := 0; j < width; j++ {
			rows[i][j] = float64(i*width + j)
		}
	}
	return rows
}

func TestCount(t *testing.T) {
	testData := map[string]struct {
		n, timeSteps, horizon int
		expected              int
	}{
		"single step":     {n: 40, timeSteps: 16, horizon: 1, expected: 24},
		"multi step":      {n: 40, timeSteps: 16, horizon: 4, expected: 21},
		"exact fit":       {n: 20, timeSteps: 16, horizon: 4, expected: 1},
		"one short":       {n: 19, timeSteps: 16, horizon: 4, expected: 0},
		"far too short":   {n: 10, timeSteps: 16, horizon: 1, expected: 0},
		"no observations": {n: 0, timeSteps: 1, horizon: 1, expected: 0},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Count(td.n, td.timeSteps, td.horizon))
		})
	}
}

func TestNew(t *testing.T) {
	width := 3
	rows := generateRows(40, width)

	d, err := New(rows, 16, 4)
	require.Nil(t, err)
	require.Equal(t, 21, d.Len())
	assert.Equal(t, 48, d.InputSize())
	assert.Equal(t, 12, d.OutputSize())

	for i := 0; i < d.Len(); i++ {
		require.Len(t, d.X[i], d.InputSize())
		require.Len(t, d.Y[i], d.OutputSize())

		// first input row is row i and the label starts right after the window
		assert.Equal(t, rows[i], d.X[i][:width])
		assert.Equal(t, rows[i+15], d.X[i][15*width:])
		assert.Equal(t, rows[i+16], d.Y[i][:width])
		assert.Equal(t, rows[i+19], d.Y[i][3*width:])
	}

	// pairs must not alias the input rows
	d.X[0][0] = -1
	assert.Equal(t, 0.0, rows[0][0])
}

func TestNewErrors(t *testing.T) {
	testData := map[string]struct {
		rows      [][]float64
		timeSteps int
		horizon   int
		err       error
	}{
		"insufficient": {
			rows:      generateRows(10, 2),
			timeSteps: 16,
			horizon:   1,
			err:       ErrInsufficientData,
		},
		"empty": {
			timeSteps: 1,
			horizon:   1,
			err:       ErrInsufficientData,
		},
		"zero window": {
			rows:      generateRows(10, 2),
			timeSteps: 0,
			horizon:   1,
			err:       ErrInvalidWindow,
		},
		"ragged": {
			rows:      [][]float64{{1, 2}, {3}, {4, 5}},
			timeSteps: 1,
			horizon:   1,
			err:       ErrFeatureLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			d, err := New(td.rows, td.timeSteps, td.horizon)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, d)
		})
	}
}

func TestSplit(t *testing.T) {
	testData := map[string]struct {
		n        int
		fraction float64
		trainLen int
		valLen   int
		err      error
	}{
		"no holdout":    {n: 10, fraction: 0, trainLen: 10, valLen: 0},
		"twenty pct":    {n: 10, fraction: 0.2, trainLen: 8, valLen: 2},
		"minimum one":   {n: 3, fraction: 0.1, trainLen: 2, valLen: 1},
		"too few":       {n: 1, fraction: 0.2, err: ErrInsufficientData},
		"bad fraction":  {n: 10, fraction: 1, err: ErrInvalidFraction},
		"negative frac": {n: 10, fraction: -0.1, err: ErrInvalidFraction},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			d, err := New(generateRows(td.n+2, 2), 2, 1)
			require.Nil(t, err)
			require.Equal(t, td.n, d.Len())

			train, val, err := d.Split(td.fraction)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.trainLen, train.Len())
			assert.Equal(t, td.valLen, val.Len())
			if td.valLen > 0 {
				// validation holds the most recent pairs
				assert.Equal(t, d.X[td.n-1], val.X[td.valLen-1])
			}
		})
	}
}

func TestTrainLen(t *testing.T) {
	testData := map[string]struct {
		n        int
		fraction float64
		expected int
		err      error
	}{
		"default fraction": {n: 21, fraction: 0.2, expected: 17},
		"rounds up to one": {n: 3, fraction: 0.1, expected: 2},
		"no hold out":      {n: 4, fraction: 0, expected: 4},
		"single pair":      {n: 1, fraction: 0.2, err: ErrInsufficientData},
		"invalid fraction": {n: 10, fraction: 1, err: ErrInvalidFraction},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n, err := TrainLen(td.n, td.fraction)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, n)
		})
	}
}

func TestRows(t *testing.T) {
	rows := generateRows(10, 2)
	d, err := New(rows, 3, 2)
	require.Nil(t, err)
	defer d.Release()

	// the last label row of the kth pair is row Rows(k)-1
	k := 4
	n := Rows(k, 3, 2)
	assert.Equal(t, 8, n)
	assert.Equal(t, rows[n-1], d.Y[k-1][2:])
	assert.Equal(t, 0, Rows(0, 3, 2))
}

func TestRelease(t *testing.T) {
	d, err := New(generateRows(5, 2), 2, 1)
	require.Nil(t, err)
	d.Release()
	assert.Equal(t, 0, d.Len())

	var nilDataset *Dataset
	nilDataset.Release()
	assert.Equal(t, 0, nilDataset.Len())
}
