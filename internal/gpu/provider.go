package gpu

import (
	"errors"
)

var ErrNotDetected = errors.New("gpu not detected")

// Provider is a single source of GPU temperature readings
type Provider interface {
	Name() string

	// Initialize runs device discovery. Returns ErrNotDetected if no device was found.
	Initialize() error

	// IsAvailable reports whether a device has been discovered
	IsAvailable() bool
	// IsActive reports whether the device is currently powered and able to report telemetry
	IsActive() bool

	// GetTemperature returns the current temperature in degrees Celsius, or 0 if it is unavailable
	GetTemperature() int

	Close() error
}
