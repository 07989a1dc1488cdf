package gpu

import (
	"path/filepath"
	"testing"

	"github.com/markusressel/hpfan/internal/testingutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegratedProvider(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	testingutils.CreateHwmonDevice(t, root, "hwmon0", "k10temp", map[string]string{"temp1_input": "50000\n"})
	testingutils.CreateHwmonDevice(t, root, "hwmon1", "i915", map[string]string{"temp1_input": "41000\n"})
	amdgpu := testingutils.CreateHwmonDevice(t, root, "hwmon2", "amdgpu", map[string]string{"temp1_input": "43500\n"})
	provider := NewIntegratedProvider(root, DefaultIntegratedDrivers)
	assert.False(t, provider.IsAvailable())
	assert.Equal(t, "", provider.Path())

	// WHEN
	err := provider.Initialize()

	// THEN
	require.NoError(t, err)
	assert.True(t, provider.IsAvailable())
	assert.True(t, provider.IsActive())
	assert.Equal(t, filepath.Join(amdgpu, "temp1_input"), provider.Path())
	assert.Equal(t, 43, provider.GetTemperature())
	assert.NoError(t, provider.Close())
}

func TestIntegratedProvider_NotDetected(t *testing.T) {
	// GIVEN
	root := t.TempDir()
	// a matching driver without temperature node is skipped
	testingutils.CreateHwmonDevice(t, root, "hwmon0", "amdgpu", nil)
	provider := NewIntegratedProvider(root, DefaultIntegratedDrivers)

	// WHEN
	err := provider.Initialize()

	// THEN
	assert.ErrorIs(t, err, ErrNotDetected)
	assert.False(t, provider.IsAvailable())
	assert.Equal(t, 0, provider.GetTemperature())
}
