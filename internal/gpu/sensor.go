package gpu

import (
	"errors"

	"github.com/markusressel/hpfan/internal/ui"
)

// Sensor combines a discrete and an integrated provider.
// The discrete GPU is preferred while it is powered and reports a plausible value.
type Sensor struct {
	Discrete   Provider
	Integrated Provider
}

// NewSensor initializes both providers. A failing provider is logged
// and does not affect the other one.
func NewSensor(discrete Provider, integrated Provider) *Sensor {
	initialize(discrete)
	initialize(integrated)
	return &Sensor{
		Discrete:   discrete,
		Integrated: integrated,
	}
}

func initialize(provider Provider) {
	defer func() {
		if r := recover(); r != nil {
			ui.Error("Failed to initialize %s provider: %v", provider.Name(), r)
		}
	}()

	if err := provider.Initialize(); err != nil {
		ui.Warning("%s provider unavailable: %v", provider.Name(), err)
	}
}

func (s *Sensor) GetId() string {
	return "gpu"
}

func (s *Sensor) ReadTemperature() int {
	if s.Discrete.IsAvailable() && s.Discrete.IsActive() {
		if temp := s.Discrete.GetTemperature(); temp > 0 {
			return temp
		}
	}
	return s.Integrated.GetTemperature()
}

func (s *Sensor) Close() error {
	return errors.Join(s.Discrete.Close(), s.Integrated.Close())
}
