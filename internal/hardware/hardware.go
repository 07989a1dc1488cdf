package hardware

import (
	"errors"
	"fmt"

	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/sensors"
	"github.com/markusressel/hpfan/internal/ui"
)

// SystemStats is a snapshot of all sensor readings
type SystemStats struct {
	CpuTemp   int `json:"cpuTemp"`
	GpuTemp   int `json:"gpuTemp"`
	CpuFanRpm int `json:"cpuFanRpm"`
	GpuFanRpm int `json:"gpuFanRpm"`
}

func (s SystemStats) String() string {
	return fmt.Sprintf("CPU %d°C %d rpm, GPU %d°C %d rpm", s.CpuTemp, s.CpuFanRpm, s.GpuTemp, s.GpuFanRpm)
}

// Hardware is the read and write surface used by the controller
type Hardware interface {
	GetSystemStats() SystemStats
	SetFanMode(mode fans.Mode) error
	SetFanSpeed(isGpu bool, pwm int) error
	// ForceResetFanMode returns the fans to fans.ModeAuto. Failures are logged, never returned.
	ForceResetFanMode()
}

// Service aggregates the sensors and the fan driver
type Service struct {
	Cpu    sensors.Sensor
	Gpu    sensors.Sensor
	Driver fans.Driver
}

func NewService(cpu sensors.Sensor, gpu sensors.Sensor, driver fans.Driver) *Service {
	return &Service{
		Cpu:    cpu,
		Gpu:    gpu,
		Driver: driver,
	}
}

func (s *Service) GetSystemStats() SystemStats {
	cpuRpm, gpuRpm := s.Driver.GetRpms()
	return SystemStats{
		CpuTemp:   s.Cpu.ReadTemperature(),
		GpuTemp:   s.Gpu.ReadTemperature(),
		CpuFanRpm: cpuRpm,
		GpuFanRpm: gpuRpm,
	}
}

func (s *Service) SetFanMode(mode fans.Mode) error {
	if err := s.Driver.SetMode(mode); err != nil {
		return err
	}
	ui.Info("Fan mode set to: %s", mode)
	return nil
}

func (s *Service) SetFanSpeed(isGpu bool, pwm int) error {
	return s.Driver.SetSpeed(isGpu, pwm)
}

func (s *Service) ForceResetFanMode() {
	defer func() {
		if r := recover(); r != nil {
			ui.Error("Failed to force reset fan mode: %v", r)
		}
	}()

	if err := s.Driver.SetMode(fans.ModeAuto); err != nil {
		ui.Error("Failed to force reset fan mode: %v", err)
		return
	}
	ui.Info("Fan mode forced to auto")
}

// Close releases the sensors and the fan driver, which returns the fans to fans.ModeAuto
func (s *Service) Close() error {
	return errors.Join(s.Driver.Close(), s.Cpu.Close(), s.Gpu.Close())
}
