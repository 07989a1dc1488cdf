package curves

const (
	// DefaultPwm is used when a curve has no points at all
	DefaultPwm = 128
	// FallbackPwm is returned if no segment of a curve matched the input
	FallbackPwm = 255
)

// CurvePoint maps a temperature (in °C) to a PWM duty cycle in [0..255]
type CurvePoint struct {
	Temperature int `json:"temperature" yaml:"temperature" validate:"min=-40,max=150"`
	Speed       int `json:"speed" yaml:"speed" validate:"min=0,max=255"`
}

// Curve is a list of points, ordered by ascending temperature
type Curve []CurvePoint

// Calculate returns the PWM value for the given temperature by linear
// interpolation between the two neighbouring points of the curve.
// The curve is expected to be sorted by temperature already.
func Calculate(currentTemp int, curve Curve) int {
	if len(curve) == 0 {
		return DefaultPwm
	}

	first := curve[0]
	if currentTemp <= first.Temperature {
		return first.Speed
	}

	last := curve[len(curve)-1]
	if currentTemp >= last.Temperature {
		return last.Speed
	}

	for i := 0; i < len(curve)-1; i++ {
		p1 := curve[i]
		p2 := curve[i+1]

		if currentTemp > p2.Temperature {
			continue
		}

		tempRange := p2.Temperature - p1.Temperature
		if tempRange == 0 {
			return p1.Speed
		}

		tempDelta := currentTemp - p1.Temperature
		speedRange := p2.Speed - p1.Speed
		return p1.Speed + tempDelta*speedRange/tempRange
	}

	return FallbackPwm
}
