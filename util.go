package windcaster

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/aouyang1/go-windcaster/forecast"
	"github.com/aouyang1/go-windcaster/observation"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNothingToPlot = errors.New("no observations or forecast chunks to plot")

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that must have the same length as the input time slice. NaN values are
// rendered as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	line = line.SetXAxis(formatTimes(t))
	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData = append(lineData, opts.LineData{Value: "-"})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: y[i][j]})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// LineForecast plots observed wind speed followed by the forecast and its interval bounds
func LineForecast(history observation.Series, res *Results) *charts.Line {
	n := len(history) + len(res.T)
	t := make([]time.Time, 0, n)
	actual := make([]float64, 0, n)
	fcst := make([]float64, 0, n)
	upper := make([]float64, 0, n)
	lower := make([]float64, 0, n)

	for _, o := range history {
		t = append(t, o.Time)
		actual = append(actual, o.WindSpeed)
		fcst = append(fcst, math.NaN())
		upper = append(upper, math.NaN())
		lower = append(lower, math.NaN())
	}
	for i := range res.T {
		t = append(t, res.T[i])
		actual = append(actual, math.NaN())
		fcst = append(fcst, res.Forecast[i])
		upper = append(upper, res.Upper[i])
		lower = append(lower, res.Lower[i])
	}

	return LineTSeries(
		"Wind Speed Forecast",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		t,
		[][]float64{actual, fcst, upper, lower},
	)
}

// PlotForecast uses the Apache Echarts library to render an html page showing the recent
// observations, the forecast and the confidence of each forecast hour
func (f *Forecaster) PlotForecast(w io.Writer, recent []observation.Observation, chunks []forecast.PredictionChunk) error {
	if len(recent) == 0 && len(chunks) == 0 {
		return ErrNothingToPlot
	}
	history, err := observation.NewSeries(recent)
	if err != nil && len(recent) > 0 {
		return err
	}

	f.mu.RLock()
	metrics := f.metrics
	f.mu.RUnlock()

	res := newResults(chunks, metrics)

	var t []time.Time
	vars := []feature.Variable{feature.Temperature, feature.WindGusts, feature.WindDirection, feature.Humidity}
	y := make([][]float64, len(vars))
	for _, o := range history {
		t = append(t, o.Time)
		for i, v := range vars {
			val, _ := feature.Value(o, v)
			y[i] = append(y[i], val)
		}
	}
	confidence := make([]float64, len(t), len(t)+len(chunks))
	for i := range confidence {
		confidence[i] = math.NaN()
	}
	for _, c := range chunks {
		t = append(t, c.StartTime)
		confidence = append(confidence, c.Confidence)
		for i, v := range vars {
			val, _ := feature.Value(c.Forecast, v)
			y[i] = append(y[i], val)
		}
	}

	page := components.NewPage()
	page.AddCharts(
		LineForecast(history, res),
		LineTSeries(
			"Temperature and Gusts",
			[]string{string(feature.Temperature), string(feature.WindGusts)},
			t,
			[][]float64{y[0], y[1]},
		),
		LineTSeries(
			"Wind Direction",
			[]string{string(feature.WindDirection)},
			t,
			[][]float64{y[2]},
		),
		LineTSeries(
			"Humidity",
			[]string{string(feature.Humidity)},
			t,
			[][]float64{y[3]},
		),
		LineTSeries(
			"Forecast Confidence",
			[]string{"Confidence"},
			t,
			[][]float64{confidence},
		),
	)
	return page.Render(w)
}

func formatTimes(t []time.Time) []string {
	out := make([]string, len(t))
	for i := range t {
		out[i] = t[i].Format(time.RFC3339)
	}
	return out
}
