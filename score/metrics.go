package score

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/goccy/go-json"
)

// Metrics summarizes the accuracy of a trained model on its held out samples
type Metrics struct {
	RMSE                float64                      `json:"rmse"`
	MAE                 float64                      `json:"mae"`
	R2Score             float64                      `json:"r2_score"`
	ConfidenceIntervals map[feature.Variable]float64 `json:"confidence_intervals"`
	SampleSize          int                          `json:"sample_size"`
	TrainingLoss        []float64                    `json:"training_loss"`
	ValidationLoss      []float64                    `json:"validation_loss"`
	ErrorDistribution   []float64                    `json:"error_distribution"`
	BinWidth            float64                      `json:"bin_width"`
	Actuals             []float64                    `json:"actuals"`
	Predictions         []float64                    `json:"predictions"`
}

// Compute scores the predictions against the actuals of the primary variable. The loss histories
// are carried through unchanged.
func Compute(actuals, predictions, trainingLoss, validationLoss []float64) (*Metrics, error) {
	rmse, err := RMSE(predictions, actuals)
	if err != nil {
		return nil, fmt.Errorf("unable to compute root mean squared error, %w", err)
	}
	mae, err := MAE(predictions, actuals)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	r2, err := RSquared(predictions, actuals)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	dist, err := ErrorDistribution(predictions, actuals)
	if err != nil {
		return nil, fmt.Errorf("unable to compute error distribution, %w", err)
	}

	vars := append(append([]feature.Variable{}, feature.CanonicalVariables...), feature.MarineVariables...)
	return &Metrics{
		RMSE:                rmse,
		MAE:                 mae,
		R2Score:             r2,
		ConfidenceIntervals: ConfidenceIntervals(rmse, vars),
		SampleSize:          len(actuals),
		TrainingLoss:        copyOf(trainingLoss),
		ValidationLoss:      copyOf(validationLoss),
		ErrorDistribution:   dist,
		BinWidth:            BinWidth,
		Actuals:             copyOf(actuals),
		Predictions:         copyOf(predictions),
	}, nil
}

func copyOf(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

// MarshalJSON encodes an undefined R2Score as null
func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	out := struct {
		alias
		R2Score *float64 `json:"r2_score"`
	}{
		alias: alias(m),
	}
	if !math.IsNaN(m.R2Score) && !math.IsInf(m.R2Score, 0) {
		r2 := m.R2Score
		out.R2Score = &r2
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a null R2Score as NaN
func (m *Metrics) UnmarshalJSON(data []byte) error {
	type alias Metrics
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var r2 struct {
		R2Score *float64 `json:"r2_score"`
	}
	if err := json.Unmarshal(data, &r2); err != nil {
		return err
	}
	*m = Metrics(a)
	m.R2Score = math.NaN()
	if r2.R2Score != nil {
		m.R2Score = *r2.R2Score
	}
	return nil
}
