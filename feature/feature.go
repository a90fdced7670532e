// Package feature maps observations to the numeric columns used by the regression network and back.
package feature

// Variable is a physical quantity tracked in an observation.
type Variable string

const (
	Temperature    Variable = "temperature"
	WindSpeed      Variable = "wind_speed"
	WindGusts      Variable = "wind_gusts"
	WindDirection  Variable = "wind_direction"
	Humidity       Variable = "humidity"
	WaveHeight     Variable = "wave_height"
	WavePeriod     Variable = "wave_period"
	SwellDirection Variable = "swell_direction"
)

// Circular returns true for angular variables measured in degrees on [0, 360)
func (v Variable) Circular() bool {
	return v == WindDirection || v == SwellDirection
}

// Marine returns true for the optional wave variables
func (v Variable) Marine() bool {
	return v == WaveHeight || v == WavePeriod || v == SwellDirection
}

// Component identifies which part of a variable a column carries. Linear variables have a single
// column while circular variables are split into a sine and cosine column.
type Component string

const (
	ComponentValue Component = ""
	ComponentSin   Component = "sin"
	ComponentCos   Component = "cos"
)

// Column is a single encoded column of the feature matrix
type Column struct {
	Variable  Variable  `json:"variable"`
	Component Component `json:"component,omitempty"`
}

func (c Column) String() string {
	if c.Component == ComponentValue {
		return string(c.Variable)
	}
	return string(c.Variable) + "_" + string(c.Component)
}

// Columns expands a variable into its encoded columns
func Columns(v Variable) []Column {
	if v.Circular() {
		return []Column{
			{Variable: v, Component: ComponentSin},
			{Variable: v, Component: ComponentCos},
		}
	}
	return []Column{{Variable: v}}
}
