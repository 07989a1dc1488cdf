package fans

import (
	"fmt"
	"strings"
)

// Mode is the operating mode of the fans
type Mode int

const (
	// ModeAuto leaves fan control to the embedded controller
	ModeAuto Mode = iota
	// ModeManual drives the fans from the configured curves
	ModeManual
	// ModeMax runs the fans at full speed
	ModeMax
)

var Modes = []Mode{ModeAuto, ModeManual, ModeMax}

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	case ModeMax:
		return "max"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the (case insensitive) name of a mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	case "max":
		return ModeMax, nil
	default:
		return ModeAuto, fmt.Errorf("unknown fan mode: %q", s)
	}
}

// ControlMode returns the pwm_enable value of the mode.
// Unknown modes fall back to automatic control.
func (m Mode) ControlMode() ControlMode {
	switch m {
	case ModeManual:
		return ControlModePWM
	case ModeMax:
		return ControlModeDisabled
	default:
		return ControlModeAutomatic
	}
}

// ModeFromControlMode is the inverse of Mode.ControlMode
func ModeFromControlMode(c ControlMode) (Mode, error) {
	switch c {
	case ControlModePWM:
		return ModeManual, nil
	case ControlModeDisabled:
		return ModeMax, nil
	case ControlModeAutomatic:
		return ModeAuto, nil
	default:
		return ModeAuto, fmt.Errorf("unknown control mode: %d", int(c))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	switch m {
	case ModeAuto, ModeManual, ModeMax:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unknown fan mode: %d", int(m))
	}
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
