//go:build !disable_nvml

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const IsNvmlSupported = true

var errNvmlNotInitialized = errors.New("nvml is not initialized")

// nvmlLibrary binds libnvidia-ml.so.1, which is loaded on Init.
// NVML state is process wide, so there is a single instance.
type nvmlLibrary struct {
	mu          sync.Mutex
	initialized bool
	devices     map[int]nvml.Device
}

var nvmlInstance = &nvmlLibrary{}

// NvmlLibrary returns the process wide NVML binding
func NvmlLibrary() Library {
	return nvmlInstance
}

func (l *nvmlLibrary) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		return nil
	}

	ret := nvml.Init()
	switch ret {
	case nvml.SUCCESS:
	case nvml.ERROR_LIBRARY_NOT_FOUND:
		return ErrLibraryNotFound
	default:
		return fmt.Errorf("nvml init failed: %s", nvml.ErrorString(ret))
	}

	l.initialized = true
	l.devices = map[int]nvml.Device{}
	return nil
}

func (l *nvmlLibrary) Temperature(index int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return 0, errNvmlNotInitialized
	}

	device, ok := l.devices[index]
	if !ok {
		var ret nvml.Return
		device, ret = nvml.DeviceGetHandleByIndex(index)
		if ret != nvml.SUCCESS {
			return 0, fmt.Errorf("couldn't get handle for nvidia device %d: %s", index, nvml.ErrorString(ret))
		}
		l.devices[index] = device
	}

	temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		// the handle is fetched again on the next call
		delete(l.devices, index)
		return 0, fmt.Errorf("couldn't read temperature of nvidia device %d: %s", index, nvml.ErrorString(ret))
	}
	return int(temp), nil
}

func (l *nvmlLibrary) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil
	}
	l.initialized = false
	l.devices = nil

	ret := nvml.Shutdown()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("nvml shutdown failed: %s", nvml.ErrorString(ret))
	}
	return nil
}

// CleanupAtExit releases NVML, if it is still initialized.
// To be called at the end of main().
func CleanupAtExit() {
	// ignore the error, nothing can be done about it anyway
	_ = nvmlInstance.Shutdown()
}
