package observation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validObservation(t time.Time) Observation {
	return Observation{
		Time:          t,
		Temperature:   12.5,
		WindSpeed:     5.1,
		WindGusts:     7.4,
		WindDirection: 270,
		Humidity:      81,
	}
}

func TestValidate(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		mutate func(o *Observation)
		err    error
	}{
		"valid": {
			mutate: func(o *Observation) {},
		},
		"zero time": {
			mutate: func(o *Observation) { o.Time = time.Time{} },
			err:    ErrInvalidObservation,
		},
		"nan temperature": {
			mutate: func(o *Observation) { o.Temperature = math.NaN() },
			err:    ErrInvalidObservation,
		},
		"negative wind speed": {
			mutate: func(o *Observation) { o.WindSpeed = -0.1 },
			err:    ErrInvalidObservation,
		},
		"direction at 360": {
			mutate: func(o *Observation) { o.WindDirection = 360 },
			err:    ErrInvalidObservation,
		},
		"humidity at 100": {
			mutate: func(o *Observation) { o.Humidity = 100 },
		},
		"humidity above 100": {
			mutate: func(o *Observation) { o.Humidity = 100.5 },
			err:    ErrInvalidObservation,
		},
		"infinite wave height": {
			mutate: func(o *Observation) { o.WaveHeight = Float(math.Inf(1)) },
			err:    ErrInvalidObservation,
		},
		"negative swell direction": {
			mutate: func(o *Observation) { o.SwellDirection = Float(-3) },
			err:    ErrInvalidObservation,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			o := validObservation(ts)
			td.mutate(&o)
			err := o.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.Nil(t, err)
		})
	}
}

func TestNewSeries(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		obs      []Observation
		expected []time.Time
		err      error
	}{
		"empty": {
			err: ErrNoObservations,
		},
		"unsorted input is sorted": {
			obs: []Observation{
				validObservation(t0.Add(2 * time.Hour)),
				validObservation(t0),
				validObservation(t0.Add(time.Hour)),
			},
			expected: []time.Time{t0, t0.Add(time.Hour), t0.Add(2 * time.Hour)},
		},
		"duplicate time": {
			obs: []Observation{
				validObservation(t0),
				validObservation(t0),
			},
			err: ErrInvalidObservation,
		},
		"invalid member": {
			obs: []Observation{
				validObservation(t0),
				{Time: t0.Add(time.Hour), Humidity: 120},
			},
			err: ErrInvalidObservation,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := NewSeries(td.obs)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, s.Times())
		})
	}
}

func TestNewSeriesCopies(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	obs := []Observation{validObservation(t0.Add(time.Hour)), validObservation(t0)}

	s, err := NewSeries(obs)
	require.Nil(t, err)

	// input order must be untouched
	assert.Equal(t, t0.Add(time.Hour), obs[0].Time)
	assert.Equal(t, t0, s[0].Time)
}

func TestRequireMarine(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := GenerateHourly(4, t0, &SimulateOptions{Seed: 1, BaseTemp: 10, BaseWind: 5, IncludeMarine: true})
	assert.Nil(t, s.RequireMarine())

	s = GenerateHourly(4, t0, nil)
	assert.ErrorIs(t, s.RequireMarine(), ErrMissingMarine)
	assert.ErrorIs(t, s.RequireMarine(), ErrInvalidObservation)
}

func TestLast(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := GenerateHourly(10, t0, nil)

	last := s.Last(3)
	require.Len(t, last, 3)
	assert.Equal(t, t0.Add(9*time.Hour), last[2].Time)
	assert.Len(t, s.Last(20), 10)
}
