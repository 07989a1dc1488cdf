package configuration

import (
	"fmt"

	"github.com/markusressel/hpfan/internal/curves"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/qdm12/reprint"
)

const (
	ProfileBackendBolt = "bolt"
	ProfileBackendFile = "file"
)

// ProfileConfig selects where the FanConfig is persisted
type ProfileConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// FanConfig is the user editable fan profile
type FanConfig struct {
	CpuCurve curves.Curve `json:"cpuCurve" yaml:"cpuCurve"`
	GpuCurve curves.Curve `json:"gpuCurve" yaml:"gpuCurve"`
	LastMode fans.Mode    `json:"lastMode" yaml:"lastMode"`
}

// DefaultCurve is used for both fans if no profile has been stored
func DefaultCurve() curves.Curve {
	return curves.Curve{
		{Temperature: 45, Speed: 76},
		{Temperature: 50, Speed: 89},
		{Temperature: 55, Speed: 102},
		{Temperature: 60, Speed: 115},
		{Temperature: 65, Speed: 128},
		{Temperature: 70, Speed: 153},
		{Temperature: 75, Speed: 179},
		{Temperature: 80, Speed: 204},
		{Temperature: 85, Speed: 230},
		{Temperature: 90, Speed: 255},
		{Temperature: 95, Speed: 255},
	}
}

func DefaultFanConfig() FanConfig {
	return FanConfig{
		CpuCurve: DefaultCurve(),
		GpuCurve: DefaultCurve(),
		LastMode: fans.ModeAuto,
	}
}

// Clone returns a deep copy, sharing no curve storage with c
func (c FanConfig) Clone() FanConfig {
	return reprint.This(c).(FanConfig)
}

func (c FanConfig) Validate() error {
	if err := curves.Validate(c.CpuCurve); err != nil {
		return fmt.Errorf("cpu curve: %w", err)
	}
	if err := curves.Validate(c.GpuCurve); err != nil {
		return fmt.Errorf("gpu curve: %w", err)
	}
	if _, err := c.LastMode.MarshalText(); err != nil {
		return err
	}
	return nil
}
