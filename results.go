package windcaster

import (
	"math"
	"time"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/aouyang1/go-windcaster/forecast"
	"github.com/aouyang1/go-windcaster/score"
	"github.com/goccy/go-json"
)

// Results is the latest forecast of a session. Forecast, Upper and Lower track wind speed where the
// bounds are the 95% interval widened as confidence decays.
type Results struct {
	SessionID string    `json:"session_id"`
	Location  string    `json:"location,omitempty"`
	TrainedAt time.Time `json:"trained_at"`

	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Upper    []float64   `json:"upper"`
	Lower    []float64   `json:"lower"`

	Chunks       []forecast.PredictionChunk `json:"chunks"`
	Metrics      *score.Metrics             `json:"metrics"`
	BaselineLoss *float64                   `json:"baseline_loss,omitempty"`
}

func newResults(chunks []forecast.PredictionChunk, metrics *score.Metrics) *Results {
	r := &Results{
		T:        make([]time.Time, len(chunks)),
		Forecast: make([]float64, len(chunks)),
		Upper:    make([]float64, len(chunks)),
		Lower:    make([]float64, len(chunks)),
		Chunks:   chunks,
		Metrics:  metrics,
	}

	var interval float64
	if metrics != nil {
		interval = metrics.ConfidenceIntervals[feature.WindSpeed]
	}
	for i, c := range chunks {
		// a fully decayed chunk doubles the interval
		width := interval * (2 - c.Confidence)
		r.T[i] = c.StartTime
		r.Forecast[i] = c.Forecast.WindSpeed
		r.Upper[i] = c.Forecast.WindSpeed + width
		r.Lower[i] = math.Max(c.Forecast.WindSpeed-width, 0)
	}
	return r
}

// JSON encodes the results with indentation
func (r *Results) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
