//go:build disable_nvml

package gpu

const IsNvmlSupported = false

type nvmlStub struct{}

// NvmlLibrary returns a binding that always reports the library as missing,
// since hpfan was compiled without nvml support
func NvmlLibrary() Library {
	return nvmlStub{}
}

func (nvmlStub) Init() error {
	return ErrLibraryNotFound
}

func (nvmlStub) Shutdown() error {
	return nil
}

func (nvmlStub) Temperature(int) (int, error) {
	return 0, ErrLibraryNotFound
}

func CleanupAtExit() {
	// nothing to release
}
