package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/ui"
)

// Store persists the fan profile
type Store interface {
	// Load returns the stored profile. If nothing has been stored yet, or the
	// stored data is unreadable, the defaults are returned instead.
	Load() configuration.FanConfig
	Save(config configuration.FanConfig) error
}

// NewStore creates the Store for the configured profile backend
func NewStore(profile configuration.ProfileConfig, dbPath string, defaults configuration.FanConfig) (Store, error) {
	switch profile.Backend {
	case configuration.ProfileBackendBolt:
		store := NewBoltStore(dbPath, defaults)
		return store, store.Init()
	case configuration.ProfileBackendFile:
		return NewFileStore(profile.Path, defaults), nil
	default:
		return nil, fmt.Errorf("unsupported profile backend: %s", profile.Backend)
	}
}

// ensureParentDir creates the parent directory of path, if it doesn't exist
func ensureParentDir(path string) error {
	parentDir := filepath.Dir(path)
	_, err := os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory: %s", parentDir)
		return os.MkdirAll(parentDir, 0755)
	}
	return err
}

// sanitize falls back to the defaults if the loaded profile is not usable
func sanitize(config configuration.FanConfig, defaults configuration.FanConfig, source string) configuration.FanConfig {
	if err := config.Validate(); err != nil {
		ui.Warning("Ignoring invalid fan profile from %s: %v", source, err)
		return defaults.Clone()
	}
	return config
}
