package gpu

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/markusressel/hpfan/internal/sysfs"
	"github.com/markusressel/hpfan/internal/ui"
)

const (
	DefaultPciRoot = "/sys/bus/pci/devices"
	NvidiaVendorId = "0x10de"

	VendorNode        = "vendor"
	RuntimeStatusNode = "power/runtime_status"

	discreteBufferSize = 64
	discreteIndex      = 0
)

var statusActive = []byte("active")

// DiscreteProvider reads the temperature of a discrete GPU through a vendor library.
// The device is discovered on the PCI bus by its vendor id. Its runtime power status
// is checked before every query, so a suspended GPU is never woken up by hpfan.
type DiscreteProvider struct {
	PciRoot string
	Vendor  string

	mu           sync.Mutex
	statusPath   string
	statusHandle sysfs.Handle
	library      lazyLibrary
	buf          []byte
}

func NewDiscreteProvider(pciRoot string, vendor string, library Library) *DiscreteProvider {
	return &DiscreteProvider{
		PciRoot: pciRoot,
		Vendor:  vendor,
		library: lazyLibrary{lib: library},
		buf:     make([]byte, discreteBufferSize),
	}
}

func (p *DiscreteProvider) Name() string {
	return "Discrete GPU"
}

// Initialize scans the PCI devices for the configured vendor. Once a device
// has been found it is kept for the lifetime of the provider.
func (p *DiscreteProvider) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.statusPath) > 0 {
		return nil
	}

	devices, err := sysfs.ListDir(p.PciRoot)
	if err != nil {
		return fmt.Errorf("unable to list PCI devices: %w", err)
	}

	expected := []byte(p.Vendor)
	for _, dir := range devices {
		if sysfs.ContentEqualsOnce(filepath.Join(dir, VendorNode), expected, p.buf) {
			p.statusPath = filepath.Join(dir, RuntimeStatusNode)
			ui.Info("Discrete GPU found, power status: %s", p.statusPath)
			return nil
		}
	}
	return fmt.Errorf("no PCI device with vendor %s: %w", p.Vendor, ErrNotDetected)
}

// StatusPath returns the runtime power status node of the discovered device
func (p *DiscreteProvider) StatusPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusPath
}

func (p *DiscreteProvider) IsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.statusPath) > 0
}

func (p *DiscreteProvider) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isActive()
}

func (p *DiscreteProvider) isActive() bool {
	if len(p.statusPath) == 0 {
		return false
	}
	return sysfs.ContentEquals(&p.statusHandle, p.statusPath, statusActive, p.buf)
}

// LibraryState returns what is currently known about the vendor library
func (p *DiscreteProvider) LibraryState() LibraryState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.library.state
}

func (p *DiscreteProvider) GetTemperature() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isActive() {
		return 0
	}
	return p.library.temperature(discreteIndex)
}

func (p *DiscreteProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.statusHandle.Close()
	return p.library.shutdown()
}
