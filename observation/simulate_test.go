package observation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHourly(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 96

	s := GenerateHourly(n, t0, &SimulateOptions{
		Seed:          3,
		BaseTemp:      11,
		BaseWind:      7,
		NoiseScale:    0.5,
		DirectionRate: 9,
		IncludeMarine: true,
	})
	require.Len(t, s, n)

	// generated data must pass the same validation as provider data
	_, err := NewSeries(s)
	require.Nil(t, err)

	crossed := false
	for i, o := range s {
		assert.Equal(t, t0.Add(time.Duration(i)*time.Hour), o.Time)
		assert.GreaterOrEqual(t, o.WindGusts, o.WindSpeed)
		assert.True(t, o.HasMarine())
		if i > 0 && o.WindDirection < s[i-1].WindDirection-180 {
			crossed = true
		}
	}
	assert.True(t, crossed, "expected direction to wrap past north")
}

func TestGenerateHourlyDeterministic(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := GenerateHourly(24, t0, nil)
	b := GenerateHourly(24, t0, nil)
	assert.Equal(t, a, b)
}

func TestValuesClamp(t *testing.T) {
	v := Values{-1, 0.5, 3}
	assert.Equal(t, Values{0, 0.5, 1}, v.Clamp(0, 1))
}
