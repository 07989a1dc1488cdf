package sensors

import (
	"path/filepath"
	"testing"

	"github.com/markusressel/hpfan/internal/testingutils"
	"github.com/stretchr/testify/assert"
)

func TestCpuSensor_ReadTemperature(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	testingutils.CreateHwmonDevice(t, root, "hwmon0", "acpitz", map[string]string{TempInputNode: "30000\n"})
	testingutils.CreateHwmonDevice(t, root, "hwmon1", "k10temp", map[string]string{TempInputNode: "52875\n"})
	sensor := NewCpuSensor(root, DefaultCpuDrivers)
	defer sensor.Close()

	// WHEN
	result := sensor.ReadTemperature()

	// THEN
	assert.Equal(t, 52, result)
	assert.Equal(t, "k10temp", sensor.Driver())
	assert.Equal(t, "cpu", sensor.GetId())
}

func TestCpuSensor_FindPath(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	dir := testingutils.CreateHwmonDevice(t, root, "hwmon2", "coretemp", map[string]string{TempInputNode: "40000\n"})
	sensor := NewCpuSensor(root, DefaultCpuDrivers)

	// WHEN
	path, ok := sensor.FindPath()

	// THEN
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, TempInputNode), path)
}

func TestCpuSensor_NotDetected(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	testingutils.CreateHwmonDevice(t, root, "hwmon0", "nvme", map[string]string{TempInputNode: "40000\n"})
	sensor := NewCpuSensor(root, DefaultCpuDrivers)

	// WHEN
	result := sensor.ReadTemperature()

	// THEN
	assert.Equal(t, 0, result)
	assert.Equal(t, "", sensor.Driver())
}

func TestCpuSensor_RetriesFailedDiscovery(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	sensor := NewCpuSensor(root, DefaultCpuDrivers)
	assert.Equal(t, 0, sensor.ReadTemperature())

	// WHEN
	testingutils.CreateHwmonDevice(t, root, "hwmon0", "coretemp", map[string]string{TempInputNode: "45000\n"})
	result := sensor.ReadTemperature()

	// THEN
	assert.Equal(t, 45, result)
	_ = sensor.Close()
}

func TestCpuSensor_KeepsDiscoveredPath(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	testingutils.CreateHwmonDevice(t, root, "hwmon5", "acpitz", map[string]string{TempInputNode: "40000\n"})
	sensor := NewCpuSensor(root, DefaultCpuDrivers)
	assert.Equal(t, 40, sensor.ReadTemperature())

	// WHEN
	// a preferred driver showing up later does not replace the discovered one
	testingutils.CreateHwmonDevice(t, root, "hwmon6", "k10temp", map[string]string{TempInputNode: "60000\n"})
	result := sensor.ReadTemperature()

	// THEN
	assert.Equal(t, 40, result)
	assert.Equal(t, "acpitz", sensor.Driver())
	_ = sensor.Close()
}

func TestCpuSensor_ReadFailureReturnsZero(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	dir := testingutils.CreateHwmonDevice(t, root, "hwmon0", "k10temp", map[string]string{TempInputNode: "48000\n"})
	sensor := NewCpuSensor(root, DefaultCpuDrivers)
	assert.Equal(t, 48, sensor.ReadTemperature())

	// WHEN
	testingutils.WriteNode(t, filepath.Join(dir, TempInputNode), "n/a\n")
	result := sensor.ReadTemperature()

	// THEN
	assert.Equal(t, 0, result)
	_ = sensor.Close()
}

func TestMilliToDegrees(t *testing.T) {
	assert.Equal(t, 47, MilliToDegrees(47999))
	assert.Equal(t, 0, MilliToDegrees(999))
	assert.Equal(t, -5, MilliToDegrees(-5500))
}
