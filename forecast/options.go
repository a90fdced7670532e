package forecast

import (
	"fmt"

	"github.com/aouyang1/go-windcaster/observation"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Preset trades training time for accuracy
type Preset string

const (
	PresetFast     Preset = "fast"
	PresetBalanced Preset = "balanced"
	PresetAccurate Preset = "accurate"
)

type presetConfig struct {
	epochs    int
	batchSize int
	timeSteps int
	decayRate float64
	hidden    []int
	dropout   float64
}

var presets = map[Preset]presetConfig{
	PresetFast: {
		epochs:    20,
		batchSize: 64,
		timeSteps: 12,
		decayRate: 0.04,
		hidden:    []int{64, 64},
	},
	PresetBalanced: {
		epochs:    50,
		batchSize: 32,
		timeSteps: 24,
		decayRate: 0.035,
		hidden:    []int{64, 128, 64},
		dropout:   0.2,
	},
	PresetAccurate: {
		epochs:    100,
		batchSize: 16,
		timeSteps: 48,
		decayRate: 0.03,
		hidden:    []int{128, 256, 128},
		dropout:   0.2,
	},
}

var lightHidden = []int{32, 64}

var validate = validator.New()

// Options configures training and rollout. Zero valued fields are filled from the preset when
// resolved so only the fields that differ from the preset need to be set. DecayRate is only filled
// when nil so that zero selects a constant confidence.
type Options struct {
	Preset          Preset   `json:"preset" yaml:"preset" default:"balanced" validate:"oneof=fast balanced accurate"`
	TimeSteps       int      `json:"time_steps" yaml:"time_steps" validate:"gte=1"`
	PredictionSteps int      `json:"prediction_steps" yaml:"prediction_steps" default:"1" validate:"gte=1"`
	Epochs          int      `json:"epochs" yaml:"epochs" validate:"gte=1"`
	BatchSize       int      `json:"batch_size" yaml:"batch_size" validate:"gte=1"`
	LearningRate    float64  `json:"learning_rate" yaml:"learning_rate" default:"0.001" validate:"gt=0"`
	ValidationSplit float64  `json:"validation_split" yaml:"validation_split" default:"0.2" validate:"gt=0,lt=1"`
	DecayRate       *float64 `json:"decay_rate" yaml:"decay_rate" validate:"omitnil,gte=0,lte=1"`
	UseLightModel   bool     `json:"use_light_model" yaml:"use_light_model"`
	IncludeMarine   bool     `json:"include_marine" yaml:"include_marine"`
	Seed            uint64   `json:"seed" yaml:"seed"`
}

// NewDefaultOptions returns the balanced preset
func NewDefaultOptions() *Options {
	o := &Options{Preset: PresetBalanced}
	o.fill()
	return o
}

// Resolve returns a copy of the options with defaults and preset values applied and validated.
// A nil receiver resolves to the default options.
func (o *Options) Resolve() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	res := *o
	if res.DecayRate != nil {
		res.DecayRate = observation.Float(*res.DecayRate)
	}
	if err := defaults.Set(&res); err != nil {
		return nil, fmt.Errorf("unable to set option defaults, %w: %w", ErrInvalidOptions, err)
	}
	if _, exists := presets[res.Preset]; !exists {
		return nil, fmt.Errorf("unknown preset %q, %w", res.Preset, ErrInvalidOptions)
	}
	res.fill()
	if err := validate.Struct(&res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return &res, nil
}

func (o *Options) fill() {
	if o.PredictionSteps == 0 {
		o.PredictionSteps = 1
	}
	if o.LearningRate == 0 {
		o.LearningRate = 0.001
	}
	if o.ValidationSplit == 0 {
		o.ValidationSplit = 0.2
	}

	p := presets[o.Preset]
	if o.TimeSteps == 0 {
		o.TimeSteps = p.timeSteps
	}
	if o.Epochs == 0 {
		o.Epochs = p.epochs
	}
	if o.BatchSize == 0 {
		o.BatchSize = p.batchSize
	}
	// an explicit zero keeps confidence constant across the horizon
	if o.DecayRate == nil {
		o.DecayRate = observation.Float(p.decayRate)
	}
}

// HiddenLayers returns the width of each hidden layer for the preset
func (o *Options) HiddenLayers() []int {
	src := presets[o.Preset].hidden
	if o.UseLightModel {
		src = lightHidden
	}
	hidden := make([]int, len(src))
	copy(hidden, src)
	return hidden
}

// Dropout returns the dropout rate applied after every hidden layer
func (o *Options) Dropout() float64 {
	if o.UseLightModel {
		return 0
	}
	return presets[o.Preset].dropout
}
