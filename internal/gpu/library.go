package gpu

import (
	"errors"

	"github.com/markusressel/hpfan/internal/ui"
)

// ErrLibraryNotFound is returned by Library.Init if the shared library can't be loaded.
// This is a permanent condition for the lifetime of the process.
var ErrLibraryNotFound = errors.New("vendor management library not found")

// Library is a binding to a vendor GPU management library
type Library interface {
	Init() error
	Shutdown() error
	// Temperature returns the core temperature of the device with the given index
	Temperature(index int) (int, error)
}

type LibraryState int

const (
	LibraryUnknown LibraryState = iota
	LibraryAvailable
	LibraryUnavailable
)

func (s LibraryState) String() string {
	switch s {
	case LibraryAvailable:
		return "available"
	case LibraryUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// lazyLibrary initializes a Library on first use and remembers the outcome.
// Only ErrLibraryNotFound is remembered as permanent, other init failures are retried.
// Not safe for concurrent use, callers synchronize.
type lazyLibrary struct {
	lib   Library
	state LibraryState
}

func (l *lazyLibrary) temperature(index int) int {
	if l.lib == nil || l.state == LibraryUnavailable {
		return 0
	}

	if l.state == LibraryUnknown {
		err := l.lib.Init()
		if errors.Is(err, ErrLibraryNotFound) {
			ui.Warning("NVIDIA drivers not installed, GPU temperature will be read from the integrated GPU only")
			l.state = LibraryUnavailable
			return 0
		} else if err != nil {
			ui.Warning("Failed to initialize NVML: %v", err)
			return 0
		}
		ui.Info("NVML library initialized")
		l.state = LibraryAvailable
	}

	temp, err := l.lib.Temperature(index)
	if err != nil {
		ui.Debug("Failed to read NVIDIA GPU temperature: %v", err)
		return 0
	}
	return temp
}

func (l *lazyLibrary) shutdown() error {
	if l.state != LibraryAvailable {
		return nil
	}
	l.state = LibraryUnknown
	return l.lib.Shutdown()
}
