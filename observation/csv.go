package observation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var ErrMissingColumn = errors.New("required csv column is missing")

var csvColumns = []string{"time", "temperature", "wind_speed", "wind_gusts", "wind_direction", "humidity"}

var csvMarineColumns = []string{"wave_height", "wave_period", "swell_direction"}

// ReadCSV parses observations from CSV with a header row. Time is RFC 3339 and the marine columns
// are optional. An empty marine cell leaves the value unset.
func ReadCSV(r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range csvColumns {
		if _, exists := idx[c]; !exists {
			return nil, fmt.Errorf("%s, %w", c, ErrMissingColumn)
		}
	}

	var obs []Observation
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv line %d, %w", line, err)
		}
		o, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d, %w", line, err)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func parseRecord(rec []string, idx map[string]int) (Observation, error) {
	var o Observation
	t, err := time.Parse(time.RFC3339, rec[idx["time"]])
	if err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidObservation, err)
	}
	o.Time = t

	dst := []*float64{&o.Temperature, &o.WindSpeed, &o.WindGusts, &o.WindDirection, &o.Humidity}
	for i, c := range csvColumns[1:] {
		v, err := strconv.ParseFloat(rec[idx[c]], 64)
		if err != nil {
			return o, fmt.Errorf("%s, %w: %w", c, ErrInvalidObservation, err)
		}
		*dst[i] = v
	}

	marine := []**float64{&o.WaveHeight, &o.WavePeriod, &o.SwellDirection}
	for i, c := range csvMarineColumns {
		j, exists := idx[c]
		if !exists || j >= len(rec) || rec[j] == "" {
			continue
		}
		v, err := strconv.ParseFloat(rec[j], 64)
		if err != nil {
			return o, fmt.Errorf("%s, %w: %w", c, ErrInvalidObservation, err)
		}
		*marine[i] = Float(v)
	}
	return o, nil
}

// WriteCSV writes the series with a header row, including the marine columns if any observation
// carries them
func WriteCSV(w io.Writer, s Series) error {
	includeMarine := false
	for _, o := range s {
		if o.HasMarine() {
			includeMarine = true
			break
		}
	}

	header := append([]string{}, csvColumns...)
	if includeMarine {
		header = append(header, csvMarineColumns...)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}

	format := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	for _, o := range s {
		rec := []string{
			o.Time.Format(time.RFC3339),
			format(o.Temperature),
			format(o.WindSpeed),
			format(o.WindGusts),
			format(o.WindDirection),
			format(o.Humidity),
		}
		if includeMarine {
			for _, p := range []*float64{o.WaveHeight, o.WavePeriod, o.SwellDirection} {
				if p == nil {
					rec = append(rec, "")
					continue
				}
				rec = append(rec, format(*p))
			}
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
