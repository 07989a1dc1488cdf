package fans

import (
	"errors"
)

const (
	MaxPwmValue = 255
	MinPwmValue = 0

	DefaultDriverName = "hp"
)

var ErrNotDetected = errors.New("fan controller not detected")

// ControlMode is the value of a pwmN_enable node
type ControlMode int

const (
	// ControlModeDisabled completely disables control, resulting in a 100% PWM signal output
	ControlModeDisabled ControlMode = 0
	// ControlModePWM enables manual, fixed speed control via setting the pwm value
	ControlModePWM ControlMode = 1
	// ControlModeAutomatic enables automatic control by the embedded controller
	ControlModeAutomatic ControlMode = 2
)

// Driver controls the two fans (CPU and GPU) of the machine
type Driver interface {
	// GetRpms returns the current speed of both fans, 0 if unavailable
	GetRpms() (cpu int, gpu int)

	SetMode(mode Mode) error

	// SetSpeed sets the duty cycle of one fan. Only has an effect in ModeManual.
	SetSpeed(isGpu bool, pwm int) error

	// Close returns the fans to ModeAuto and releases all resources
	Close() error
}
