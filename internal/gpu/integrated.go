package gpu

import (
	"fmt"

	"github.com/markusressel/hpfan/internal/sensors"
)

// DefaultIntegratedDrivers are the hwmon drivers of integrated GPUs, in order of preference
var DefaultIntegratedDrivers = []string{"amdgpu", "i915"}

// IntegratedProvider reads the temperature of an integrated GPU from hwmon.
// It is always considered active.
type IntegratedProvider struct {
	sensor *sensors.HwmonSensor
}

func NewIntegratedProvider(hwmonRoot string, drivers []string) *IntegratedProvider {
	return &IntegratedProvider{
		sensor: sensors.NewHwmonSensor("integrated gpu", hwmonRoot, drivers),
	}
}

func (p *IntegratedProvider) Name() string {
	return "Integrated GPU"
}

func (p *IntegratedProvider) Initialize() error {
	if _, ok := p.sensor.FindPath(); !ok {
		return fmt.Errorf("no hwmon device for drivers %v: %w", p.sensor.Drivers, ErrNotDetected)
	}
	return nil
}

// Path returns the temperature node of the discovered device, or an empty string
func (p *IntegratedProvider) Path() string {
	if !p.sensor.Detected() {
		return ""
	}
	path, _ := p.sensor.FindPath()
	return path
}

func (p *IntegratedProvider) IsAvailable() bool {
	return p.sensor.Detected()
}

func (p *IntegratedProvider) IsActive() bool {
	return true
}

func (p *IntegratedProvider) GetTemperature() int {
	return p.sensor.ReadTemperature()
}

func (p *IntegratedProvider) Close() error {
	return p.sensor.Close()
}
