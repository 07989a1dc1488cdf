package sensors

const (
	TempInputNode = "temp1_input"

	// sysfs temperatures are reported in millidegree Celsius
	milliDegreesPerDegree = 1000
)

// DefaultCpuDrivers are the hwmon drivers providing a CPU temperature, in order of preference
var DefaultCpuDrivers = []string{"k10temp", "coretemp", "acpitz"}

// Sensor provides a temperature in whole degrees Celsius
type Sensor interface {
	GetId() string

	// ReadTemperature returns the current temperature, or 0 if it is unavailable
	ReadTemperature() int

	Close() error
}

// MilliToDegrees converts a sysfs millidegree reading to whole degrees, truncating
func MilliToDegrees(value int) int {
	return value / milliDegreesPerDegree
}
