package fans

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/markusressel/hpfan/internal/hwmon"
	"github.com/markusressel/hpfan/internal/sysfs"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/markusressel/hpfan/internal/util"
)

const (
	PwmEnableNode  = "pwm1_enable"
	CpuPwmNode     = "pwm1"
	GpuPwmNode     = "pwm2"
	CpuFanRpmNode  = "fan1_input"
	GpuFanRpmNode  = "fan2_input"
	readBufferSize = 64
)

// HwMonDriver controls the fans of an HP laptop through the hwmon device
// of the "hp" platform driver.
// The device is discovered on first use and kept once found.
type HwMonDriver struct {
	Root string
	Name string

	mu       sync.Mutex
	dir      string
	reported bool

	cpuPwm sysfs.Handle
	gpuPwm sysfs.Handle
	cpuRpm sysfs.Handle
	gpuRpm sysfs.Handle

	buf    []byte
	numBuf []byte
}

func NewHwMonDriver(root string, name string) *HwMonDriver {
	return &HwMonDriver{
		Root:   root,
		Name:   name,
		buf:    make([]byte, readBufferSize),
		numBuf: make([]byte, 0, 4),
	}
}

// Detect runs discovery if it did not succeed yet and returns the device directory
func (d *HwMonDriver) Detect() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ensureDir() {
		return "", ErrNotDetected
	}
	return d.dir, nil
}

func (d *HwMonDriver) ensureDir() bool {
	if len(d.dir) > 0 {
		return true
	}

	match, err := hwmon.FindByDriverPriority(d.Root, []string{d.Name}, PwmEnableNode)
	if err != nil {
		if !d.reported {
			d.reported = true
			if errors.Is(err, hwmon.ErrNotFound) {
				ui.Warning("No compatible fan controller found (driver: %s)", d.Name)
			} else {
				ui.Warning("Error while probing for fan controller: %v", err)
			}
		}
		return false
	}

	ui.Info("Fan controller detected at %s", match.Dir)
	d.dir = match.Dir
	return true
}

func (d *HwMonDriver) GetRpms() (cpu int, gpu int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ensureDir() {
		return 0, 0
	}

	cpu = sysfs.ReadInt(&d.cpuRpm, filepath.Join(d.dir, CpuFanRpmNode), d.buf)
	gpu = sysfs.ReadInt(&d.gpuRpm, filepath.Join(d.dir, GpuFanRpmNode), d.buf)
	return cpu, gpu
}

// GetMode reads back the mode currently set on the device
func (d *HwMonDriver) GetMode() (Mode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ensureDir() {
		return ModeAuto, ErrNotDetected
	}

	path := filepath.Join(d.dir, PwmEnableNode)
	content, err := os.ReadFile(path)
	if err != nil {
		return ModeAuto, err
	}
	value, ok := sysfs.ParseInt(content)
	if !ok {
		return ModeAuto, fmt.Errorf("unexpected content in %s: %q", path, sysfs.TrimSpace(content))
	}
	return ModeFromControlMode(ControlMode(value))
}

func (d *HwMonDriver) SetMode(mode Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setMode(mode)
}

func (d *HwMonDriver) setMode(mode Mode) error {
	if !d.ensureDir() {
		return nil
	}

	if mode != ModeManual {
		// firmware takes over the pwm nodes, stale handles must not write to them
		d.closePwmHandles()
	}

	var handle sysfs.Handle
	defer handle.Close()

	value := []byte{byte('0' + mode.ControlMode())}
	if err := sysfs.WriteBytes(&handle, filepath.Join(d.dir, PwmEnableNode), value); err != nil {
		return fmt.Errorf("failed to set fan mode to %s: %w", mode, err)
	}
	return nil
}

func (d *HwMonDriver) SetSpeed(isGpu bool, pwm int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ensureDir() {
		return nil
	}

	pwm = util.Coerce(pwm, MinPwmValue, MaxPwmValue)
	d.numBuf = strconv.AppendInt(d.numBuf[:0], int64(pwm), 10)

	node, handle := CpuPwmNode, &d.cpuPwm
	if isGpu {
		node, handle = GpuPwmNode, &d.gpuPwm
	}
	if err := sysfs.WriteBytes(handle, filepath.Join(d.dir, node), d.numBuf); err != nil {
		return fmt.Errorf("failed to write pwm %d to %s: %w", pwm, node, err)
	}
	return nil
}

func (d *HwMonDriver) closePwmHandles() {
	_ = d.cpuPwm.Close()
	_ = d.gpuPwm.Close()
}

// Close returns the fans to automatic control, ignoring any failure,
// and releases all handles.
func (d *HwMonDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.dir) > 0 {
		if err := d.setMode(ModeAuto); err != nil {
			ui.Warning("Unable to return fans to auto mode: %v", err)
		}
	}

	d.closePwmHandles()
	_ = d.cpuRpm.Close()
	_ = d.gpuRpm.Close()
	return nil
}
