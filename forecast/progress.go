package forecast

// Stage names the phase a progress update belongs to
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageTraining     Stage = "training"
	StagePredicting   Stage = "predicting"
)

// Progress is reported once at the start of training, once per epoch and once per forecast step.
// During prediction CurrentEpoch and TotalEpochs hold the step and horizon.
type Progress struct {
	CurrentEpoch   int     `json:"current_epoch"`
	TotalEpochs    int     `json:"total_epochs"`
	Loss           float64 `json:"loss"`
	ValidationLoss float64 `json:"validation_loss"`
	Stage          Stage   `json:"stage"`
}

// ProgressFunc receives progress updates. It is called synchronously so it should return quickly.
type ProgressFunc func(Progress)

func (f ProgressFunc) emit(p Progress) {
	if f != nil {
		f(p)
	}
}
