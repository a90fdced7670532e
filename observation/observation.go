// Package observation holds the hourly weather and marine records consumed by the forecaster
// along with validation of a chronological series of them.
package observation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrNoObservations     = errors.New("no observations")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrDuplicateTime      = errors.New("duplicate observation time")
	ErrMissingMarine      = errors.New("observation is missing marine values")
)

// Observation is a single hourly reading for a location. Marine values are optional and are nil
// when the provider has no wave data for the location.
type Observation struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"wind_speed"`
	WindGusts     float64   `json:"wind_gusts"`
	WindDirection float64   `json:"wind_direction"`
	Humidity      float64   `json:"humidity"`

	WaveHeight     *float64 `json:"wave_height,omitempty"`
	WavePeriod     *float64 `json:"wave_period,omitempty"`
	SwellDirection *float64 `json:"swell_direction,omitempty"`
}

// HasMarine returns true if all of the wave values are populated
func (o Observation) HasMarine() bool {
	return o.WaveHeight != nil && o.WavePeriod != nil && o.SwellDirection != nil
}

type bound struct {
	name     string
	val      float64
	min      float64
	max      float64
	circular bool // half open on [min, max)
}

func (b bound) check(t time.Time) error {
	if math.IsNaN(b.val) || math.IsInf(b.val, 0) {
		return fmt.Errorf("%s is not finite at %s, %w", b.name, t.Format(time.RFC3339), ErrInvalidObservation)
	}
	if b.val < b.min {
		return fmt.Errorf("%s of %.3f is below %.3f at %s, %w", b.name, b.val, b.min, t.Format(time.RFC3339), ErrInvalidObservation)
	}
	if b.val > b.max || (b.circular && b.val == b.max) {
		return fmt.Errorf("%s of %.3f is above %.3f at %s, %w", b.name, b.val, b.max, t.Format(time.RFC3339), ErrInvalidObservation)
	}
	return nil
}

// Validate rejects non-finite values and values outside of their physical ranges
func (o Observation) Validate() error {
	if o.Time.IsZero() {
		return fmt.Errorf("missing time, %w", ErrInvalidObservation)
	}
	inf := math.Inf(1)
	bounds := []bound{
		{name: "temperature", val: o.Temperature, min: -inf, max: inf},
		{name: "wind_speed", val: o.WindSpeed, max: inf},
		{name: "wind_gusts", val: o.WindGusts, max: inf},
		{name: "wind_direction", val: o.WindDirection, max: 360, circular: true},
		{name: "humidity", val: o.Humidity, max: 100},
	}
	if o.WaveHeight != nil {
		bounds = append(bounds, bound{name: "wave_height", val: *o.WaveHeight, max: inf})
	}
	if o.WavePeriod != nil {
		bounds = append(bounds, bound{name: "wave_period", val: *o.WavePeriod, max: inf})
	}
	if o.SwellDirection != nil {
		bounds = append(bounds, bound{name: "swell_direction", val: *o.SwellDirection, max: 360, circular: true})
	}

	for _, b := range bounds {
		if err := b.check(o.Time); err != nil {
			return err
		}
	}
	return nil
}

// Series is a chronologically ascending slice of observations with unique times.
type Series []Observation

// NewSeries validates every observation and returns a time sorted copy. Duplicate times are
// rejected since a series must be strictly increasing.
func NewSeries(obs []Observation) (Series, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}
	for i, o := range obs {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("observation %d, %w", i, err)
		}
	}

	s := make(Series, len(obs))
	copy(s, obs)
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Time.Before(s[j].Time)
	})

	for i := 1; i < len(s); i++ {
		if s[i].Time.Equal(s[i-1].Time) {
			return nil, fmt.Errorf("duplicate at %s, %w: %w", s[i].Time.Format(time.RFC3339), ErrDuplicateTime, ErrInvalidObservation)
		}
	}
	return s, nil
}

// RequireMarine returns an error if any observation in the series is missing wave values
func (s Series) RequireMarine() error {
	for i, o := range s {
		if !o.HasMarine() {
			return fmt.Errorf("observation %d at %s, %w: %w", i, o.Time.Format(time.RFC3339), ErrMissingMarine, ErrInvalidObservation)
		}
	}
	return nil
}

// Last returns the trailing n observations. If the series is shorter all observations are returned.
func (s Series) Last(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Times returns the time of each observation
func (s Series) Times() []time.Time {
	t := make([]time.Time, len(s))
	for i, o := range s {
		t[i] = o.Time
	}
	return t
}

// Copy returns a copy of the series. Marine pointers are shared since observations are immutable.
func (s Series) Copy() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}

// Float returns a pointer to the value for use in the optional marine fields
func Float(v float64) *float64 {
	return &v
}
