package feature

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-windcaster/observation"
)

var ErrVectorLenMismatch = errors.New("vector length does not match feature set width")

// CanonicalVariables is the core feature set used for every location
var CanonicalVariables = []Variable{Temperature, WindSpeed, WindGusts, WindDirection, Humidity}

// MarineVariables extend the canonical set for coastal locations
var MarineVariables = []Variable{WaveHeight, WavePeriod, SwellDirection}

// Set describes the ordered variables forecast for a location and how they are encoded into
// columns. Circular variables take two columns.
type Set struct {
	vars   []Variable
	labels *Labels
}

// NewSet returns the canonical feature set, optionally extended with the marine variables
func NewSet(includeMarine bool) *Set {
	vars := make([]Variable, 0, len(CanonicalVariables)+len(MarineVariables))
	vars = append(vars, CanonicalVariables...)
	if includeMarine {
		vars = append(vars, MarineVariables...)
	}

	var cols []Column
	for _, v := range vars {
		cols = append(cols, Columns(v)...)
	}
	return &Set{
		vars:   vars,
		labels: NewLabels(cols),
	}
}

// IncludesMarine returns true if the set encodes the wave variables
func (s *Set) IncludesMarine() bool {
	return len(s.vars) > len(CanonicalVariables)
}

// Variables returns a copy of the ordered variables in the set
func (s *Set) Variables() []Variable {
	vars := make([]Variable, len(s.vars))
	copy(vars, s.vars)
	return vars
}

// Labels returns the column labels of an encoded vector
func (s *Set) Labels() *Labels {
	return s.labels
}

// Width is the number of encoded columns per observation
func (s *Set) Width() int {
	return s.labels.Len()
}

// Encode writes the observation into dst, which must have Width elements. If dst is nil a new
// slice is allocated.
func (s *Set) Encode(o observation.Observation, dst []float64) ([]float64, error) {
	if dst == nil {
		dst = make([]float64, s.Width())
	}
	if len(dst) != s.Width() {
		return nil, fmt.Errorf("got %d, expected %d, %w", len(dst), s.Width(), ErrVectorLenMismatch)
	}

	i := 0
	for _, v := range s.vars {
		val, ok := Value(o, v)
		if !ok {
			return nil, fmt.Errorf("%s at %s, %w", v, o.Time.Format(time.RFC3339), observation.ErrMissingMarine)
		}
		if v.Circular() {
			rad := val * math.Pi / 180.0
			dst[i] = math.Sin(rad)
			dst[i+1] = math.Cos(rad)
			i += 2
			continue
		}
		dst[i] = val
		i++
	}
	return dst, nil
}

// Decode reconstructs an observation at time t from an encoded vector. Angles are recovered with
// atan2 so the sine/cosine pair does not need to be unit length. No physical clamping is applied.
func (s *Set) Decode(vec []float64, t time.Time) (observation.Observation, error) {
	if len(vec) != s.Width() {
		return observation.Observation{}, fmt.Errorf("got %d, expected %d, %w", len(vec), s.Width(), ErrVectorLenMismatch)
	}

	o := observation.Observation{Time: t}
	i := 0
	for _, v := range s.vars {
		var val float64
		if v.Circular() {
			val = Angle(vec[i], vec[i+1])
			i += 2
		} else {
			val = vec[i]
			i++
		}
		setValue(&o, v, val)
	}
	return o, nil
}

// Matrix encodes every observation of the series into a row
func (s *Set) Matrix(series observation.Series) ([][]float64, error) {
	width := s.Width()
	backing := make([]float64, len(series)*width)
	rows := make([][]float64, len(series))
	for i, o := range series {
		row, err := s.Encode(o, backing[i*width:(i+1)*width])
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return rows, nil
}

// Angle converts a sine/cosine pair into degrees on [0, 360)
func Angle(sin, cos float64) float64 {
	return WrapDegrees(math.Atan2(sin, cos) * 180.0 / math.Pi)
}

// WrapDegrees maps any angle in degrees onto [0, 360)
func WrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// guards against -tiny + 360 rounding up to 360
	if d >= 360 {
		d = 0
	}
	return d
}

// Value returns the observation value for the variable. False is returned for a missing marine value.
func Value(o observation.Observation, v Variable) (float64, bool) {
	switch v {
	case Temperature:
		return o.Temperature, true
	case WindSpeed:
		return o.WindSpeed, true
	case WindGusts:
		return o.WindGusts, true
	case WindDirection:
		return o.WindDirection, true
	case Humidity:
		return o.Humidity, true
	case WaveHeight:
		return deref(o.WaveHeight)
	case WavePeriod:
		return deref(o.WavePeriod)
	case SwellDirection:
		return deref(o.SwellDirection)
	}
	return 0, false
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func setValue(o *observation.Observation, v Variable, val float64) {
	switch v {
	case Temperature:
		o.Temperature = val
	case WindSpeed:
		o.WindSpeed = val
	case WindGusts:
		o.WindGusts = val
	case WindDirection:
		o.WindDirection = val
	case Humidity:
		o.Humidity = val
	case WaveHeight:
		o.WaveHeight = observation.Float(val)
	case WavePeriod:
		o.WavePeriod = observation.Float(val)
	case SwellDirection:
		o.SwellDirection = observation.Float(val)
	}
}
