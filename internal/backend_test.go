package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/markusressel/hpfan/internal/testingutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(t *testing.T) (configuration.Configuration, string) {
	hwmonRoot := t.TempDir()
	testingutils.CreateHwmonDevice(t, hwmonRoot, "hwmon0", "acpitz", map[string]string{"temp1_input": "30000\n"})
	testingutils.CreateHwmonDevice(t, hwmonRoot, "hwmon1", "amdgpu", map[string]string{"temp1_input": "45000\n"})
	testingutils.CreateHwmonDevice(t, hwmonRoot, "hwmon2", "k10temp", map[string]string{"temp1_input": "52000\n"})
	fanDir := testingutils.CreateHwmonDevice(t, hwmonRoot, "hwmon3", "hp", map[string]string{
		fans.PwmEnableNode: "1\n",
		fans.CpuPwmNode:    "",
		fans.GpuPwmNode:    "",
		fans.CpuFanRpmNode: "2000\n",
		fans.GpuFanRpmNode: "2100\n",
	})

	config := configuration.Configuration{
		DbPath:               filepath.Join(t.TempDir(), "hpfan.db"),
		Profile:              configuration.ProfileConfig{Backend: configuration.ProfileBackendBolt},
		DefaultMode:          fans.ModeManual,
		ControllerTickRate:   time.Second,
		HwmonRoot:            hwmonRoot,
		PciRoot:              t.TempDir(),
		CpuDrivers:           []string{"k10temp", "coretemp", "acpitz"},
		IntegratedGpuDrivers: []string{"amdgpu", "i915"},
		FanDriverName:        fans.DefaultDriverName,
		DiscreteGpuVendor:    "0x10de",
	}
	config.Nvml.Enabled.SetOverride(false)
	return config, fanDir
}

func TestCreateHardware(t *testing.T) {
	// GIVEN
	config, fanDir := createTestConfig(t)

	// WHEN
	hw := CreateHardware(config)

	// THEN
	assert.Equal(t, hardware.SystemStats{
		CpuTemp:   52,
		GpuTemp:   45,
		CpuFanRpm: 2000,
		GpuFanRpm: 2100,
	}, hw.GetSystemStats())

	// WHEN
	err := hw.Close()

	// THEN
	assert.NoError(t, err)
	enable := testingutils.ReadNode(t, filepath.Join(fanDir, fans.PwmEnableNode))
	assert.Equal(t, "2", strings.TrimSpace(enable))
}

func TestCreateStore(t *testing.T) {
	// GIVEN
	config, _ := createTestConfig(t)

	// WHEN
	store := CreateStore(config)

	// THEN
	loaded := store.Load()
	assert.Equal(t, fans.ModeManual, loaded.LastMode)
	assert.Equal(t, configuration.DefaultCurve(), loaded.CpuCurve)

	// WHEN
	loaded.LastMode = fans.ModeMax
	require.NoError(t, store.Save(loaded))

	// THEN
	assert.Equal(t, fans.ModeMax, CreateStore(config).Load().LastMode)
}

func TestDefaultProfile(t *testing.T) {
	// GIVEN
	config := configuration.Configuration{DefaultMode: fans.ModeMax}

	// WHEN
	profile := DefaultProfile(config)

	// THEN
	assert.Equal(t, fans.ModeMax, profile.LastMode)
	assert.Equal(t, configuration.DefaultCurve(), profile.GpuCurve)
}
