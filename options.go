package windcaster

import (
	"fmt"
	"io"

	"github.com/aouyang1/go-windcaster/forecast"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Options configures a forecasting session
type Options struct {
	ForecastOptions *forecast.Options `json:"forecast_options" yaml:"forecast_options"`

	// Horizon is the number of hours forecast when the caller does not specify one
	Horizon int `json:"horizon" yaml:"horizon" default:"24"`

	// Location is an optional label attached to every log line and result of the session
	Location string `json:"location" yaml:"location"`
}

// NewDefaultOptions returns the balanced preset with a 24 hour horizon
func NewDefaultOptions() *Options {
	return &Options{
		ForecastOptions: forecast.NewDefaultOptions(),
		Horizon:         24,
	}
}

// LoadOptions decodes YAML options. Missing fields fall back to their defaults and the forecast
// options are resolved against their preset.
func LoadOptions(r io.Reader) (*Options, error) {
	opt := &Options{}
	if err := yaml.NewDecoder(r).Decode(opt); err != nil && err != io.EOF {
		return nil, fmt.Errorf("unable to decode options, %w", err)
	}
	return opt.resolve()
}

func (o *Options) resolve() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	res := *o
	if res.ForecastOptions != nil {
		fOpt := *res.ForecastOptions
		res.ForecastOptions = &fOpt
	}
	if err := defaults.Set(&res); err != nil {
		return nil, fmt.Errorf("unable to set session defaults, %w: %w", forecast.ErrInvalidOptions, err)
	}
	if res.Horizon < 1 {
		return nil, fmt.Errorf("default horizon of %d, %w", res.Horizon, forecast.ErrInvalidHorizon)
	}
	fOpt, err := res.ForecastOptions.Resolve()
	if err != nil {
		return nil, err
	}
	res.ForecastOptions = fOpt
	return &res, nil
}
