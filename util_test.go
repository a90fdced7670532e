package windcaster

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-windcaster/observation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTSeries(t *testing.T) {
	ts := observation.GenerateT(3, time.Hour, start)
	line := LineTSeries("test", []string{"a", "b"}, ts, [][]float64{{1, math.NaN(), 3}, {4, 5, 6}})
	require.Len(t, line.MultiSeries, 2)
	assert.Len(t, line.MultiSeries[0].Data, 3)
}

func TestPlotForecast(t *testing.T) {
	obs := observation.GenerateHourly(40, start, nil)

	f, err := New(testSessionOptions())
	require.Nil(t, err)
	defer f.Close()

	var buf bytes.Buffer
	assert.ErrorIs(t, f.PlotForecast(&buf, nil, nil), ErrNothingToPlot)

	require.Nil(t, f.Train(context.Background(), obs, nil))
	chunks, err := f.Predict(context.Background(), obs, 12)
	require.Nil(t, err)

	require.Nil(t, f.PlotForecast(&buf, obs, chunks))
	html := buf.String()
	assert.Contains(t, html, "Wind Speed Forecast")
	assert.Contains(t, html, "Forecast Confidence")
}
