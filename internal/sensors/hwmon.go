package sensors

import (
	"errors"
	"sync"

	"github.com/markusressel/hpfan/internal/hwmon"
	"github.com/markusressel/hpfan/internal/sysfs"
	"github.com/markusressel/hpfan/internal/ui"
)

const readBufferSize = 16

// HwmonSensor reads temp1_input of the first hwmon device matching
// one of Drivers, in the order of Drivers.
// The device is discovered on first use. A successful discovery is kept
// for the lifetime of the sensor, a failed one is retried on the next read.
type HwmonSensor struct {
	Id      string
	Root    string
	Drivers []string

	mu       sync.Mutex
	match    *hwmon.Match
	reported bool
	handle   sysfs.Handle
	buf      []byte
}

func NewCpuSensor(root string, drivers []string) *HwmonSensor {
	return NewHwmonSensor("cpu", root, drivers)
}

func NewHwmonSensor(id string, root string, drivers []string) *HwmonSensor {
	return &HwmonSensor{
		Id:      id,
		Root:    root,
		Drivers: drivers,
		buf:     make([]byte, readBufferSize),
	}
}

func (sensor *HwmonSensor) GetId() string {
	return sensor.Id
}

// FindPath runs discovery if it did not succeed yet and returns the
// resolved temperature node.
func (sensor *HwmonSensor) FindPath() (string, bool) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.findPath()
}

func (sensor *HwmonSensor) findPath() (string, bool) {
	if sensor.match != nil {
		return sensor.match.Path, true
	}

	match, err := hwmon.FindByDriverPriority(sensor.Root, sensor.Drivers, TempInputNode)
	if err != nil {
		if !sensor.reported {
			sensor.reported = true
			if errors.Is(err, hwmon.ErrNotFound) {
				ui.Warning("No compatible %s temperature sensor found (drivers: %v)", sensor.Id, sensor.Drivers)
			} else {
				ui.Warning("Error while scanning for %s temperature sensor: %v", sensor.Id, err)
			}
		}
		return "", false
	}

	ui.Info("%s temperature sensor detected: %s at %s", sensor.Id, match.Driver, match.Path)
	sensor.match = &match
	_ = sensor.handle.Close()
	return match.Path, true
}

// Detected reports whether discovery has succeeded
func (sensor *HwmonSensor) Detected() bool {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.match != nil
}

// Driver returns the name of the matched driver, or an empty string
func (sensor *HwmonSensor) Driver() string {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	if sensor.match == nil {
		return ""
	}
	return sensor.match.Driver
}

func (sensor *HwmonSensor) ReadTemperature() int {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	path, ok := sensor.findPath()
	if !ok {
		return 0
	}
	return MilliToDegrees(sysfs.ReadInt(&sensor.handle, path, sensor.buf))
}

func (sensor *HwmonSensor) Close() error {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.handle.Close()
}
