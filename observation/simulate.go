package observation

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT returns n evenly spaced times starting at start
func GenerateT(n int, interval time.Duration, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.Add(interval*time.Duration(i)))
	}
	return t
}

// Values is a generated signal that can be composed by chaining Add.
type Values []float64

func (v Values) Add(src Values) Values {
	floats.Add(v, src)
	return v
}

func (v Values) Clamp(lower, upper float64) Values {
	for i := range v {
		v[i] = math.Min(math.Max(v[i], lower), upper)
	}
	return v
}

func GenerateConst(n int, val float64) Values {
	v := make(Values, n)
	for i := range v {
		v[i] = val
	}
	return v
}

func GenerateWave(t []time.Time, amp, periodSec, order, timeOffset float64) Values {
	v := make(Values, 0, len(t))
	for i := 0; i < len(t); i++ {
		v = append(v, amp*math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset)))
	}
	return v
}

func GenerateNoise(n int, scale float64, rng *rand.Rand) Values {
	v := make(Values, n)
	for i := range v {
		v[i] = rng.NormFloat64() * scale
	}
	return v
}

// SimulateOptions configures a synthetic hourly series with a diurnal cycle
type SimulateOptions struct {
	Seed          uint64
	BaseTemp      float64
	BaseWind      float64
	NoiseScale    float64
	DirectionRate float64 // degrees of veer per hour
	IncludeMarine bool
}

func NewDefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		Seed:          7,
		BaseTemp:      14.5,
		BaseWind:      6.2,
		NoiseScale:    0.3,
		DirectionRate: 7.5,
	}
}

// GenerateHourly creates n hourly observations beginning at start. Wind direction veers at a
// constant rate so the series crosses the 0/360 boundary for n larger than a couple of days.
func GenerateHourly(n int, start time.Time, opt *SimulateOptions) Series {
	if opt == nil {
		opt = NewDefaultSimulateOptions()
	}
	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))
	t := GenerateT(n, time.Hour, start)

	day := 86400.0
	temp := GenerateConst(n, opt.BaseTemp).
		Add(GenerateWave(t, 4.8, day, 1.0, -9*3600)).
		Add(GenerateNoise(n, opt.NoiseScale, rng))
	wind := GenerateConst(n, opt.BaseWind).
		Add(GenerateWave(t, 2.4, day, 1.0, -12*3600)).
		Add(GenerateWave(t, 0.8, day, 2.0, 0)).
		Add(GenerateNoise(n, opt.NoiseScale, rng)).
		Clamp(0, math.Inf(1))
	gustFactor := GenerateConst(n, 1.35).
		Add(GenerateNoise(n, 0.05, rng)).
		Clamp(1.0, 2.0)
	humidity := GenerateConst(n, 72).
		Add(GenerateWave(t, -14, day, 1.0, -9*3600)).
		Add(GenerateNoise(n, 2*opt.NoiseScale, rng)).
		Clamp(0, 100)

	var waveHeight, wavePeriod Values
	if opt.IncludeMarine {
		waveHeight = GenerateConst(n, 1.1).
			Add(GenerateWave(t, 0.35, day, 1.0, -15*3600)).
			Add(GenerateNoise(n, 0.05, rng)).
			Clamp(0, math.Inf(1))
		wavePeriod = GenerateConst(n, 8.5).
			Add(GenerateWave(t, 1.2, 2*day, 1.0, 0)).
			Clamp(0, math.Inf(1))
	}

	s := make(Series, n)
	for i := 0; i < n; i++ {
		dir := wrapDegrees(200 + opt.DirectionRate*float64(i) + 10*rng.NormFloat64()*opt.NoiseScale)
		o := Observation{
			Time:          t[i],
			Temperature:   temp[i],
			WindSpeed:     wind[i],
			WindGusts:     wind[i] * gustFactor[i],
			WindDirection: dir,
			Humidity:      humidity[i],
		}
		if opt.IncludeMarine {
			o.WaveHeight = Float(waveHeight[i])
			o.WavePeriod = Float(wavePeriod[i])
			o.SwellDirection = Float(wrapDegrees(dir + 35))
		}
		s[i] = o
	}
	return s
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
