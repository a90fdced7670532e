package observation

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected []Observation
		err      error
	}{
		"canonical": {
			input: "time,temperature,wind_speed,wind_gusts,wind_direction,humidity\n" +
				"2024-06-01T00:00:00Z,12.5,5.1,7.4,270,81\n",
			expected: []Observation{
				{
					Time:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
					Temperature:   12.5,
					WindSpeed:     5.1,
					WindGusts:     7.4,
					WindDirection: 270,
					Humidity:      81,
				},
			},
		},
		"reordered with marine": {
			input: "humidity,time,wind_direction,wind_gusts,wind_speed,temperature,wave_height,wave_period,swell_direction\n" +
				"60,2024-06-01T01:00:00Z,10,3,2,15,1.2,8,40\n" +
				"61,2024-06-01T02:00:00Z,12,3,2,15,,,\n",
			expected: []Observation{
				{
					Time:           time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC),
					Temperature:    15,
					WindSpeed:      2,
					WindGusts:      3,
					WindDirection:  10,
					Humidity:       60,
					WaveHeight:     Float(1.2),
					WavePeriod:     Float(8),
					SwellDirection: Float(40),
				},
				{
					Time:          time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC),
					Temperature:   15,
					WindSpeed:     2,
					WindGusts:     3,
					WindDirection: 12,
					Humidity:      61,
				},
			},
		},
		"missing column": {
			input: "time,temperature,wind_speed\n2024-06-01T00:00:00Z,1,2\n",
			err:   ErrMissingColumn,
		},
		"bad number": {
			input: "time,temperature,wind_speed,wind_gusts,wind_direction,humidity\n" +
				"2024-06-01T00:00:00Z,warm,5.1,7.4,270,81\n",
			err: ErrInvalidObservation,
		},
		"bad time": {
			input: "time,temperature,wind_speed,wind_gusts,wind_direction,humidity\n" +
				"yesterday,12.5,5.1,7.4,270,81\n",
			err: ErrInvalidObservation,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			obs, err := ReadCSV(strings.NewReader(td.input))
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, obs)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := GenerateHourly(5, t0, &SimulateOptions{Seed: 2, BaseTemp: 10, BaseWind: 4, NoiseScale: 0.1, IncludeMarine: true})

	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, s))

	obs, err := ReadCSV(&buf)
	require.Nil(t, err)
	assert.Equal(t, []Observation(s), obs)
}
