package persistence

import (
	"bytes"
	"errors"
	"os"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// FileStore keeps the profile in a YAML file, which is replaced atomically on save
type FileStore struct {
	path     string
	defaults configuration.FanConfig
}

func NewFileStore(path string, defaults configuration.FanConfig) *FileStore {
	return &FileStore{
		path:     path,
		defaults: defaults,
	}
}

func (p *FileStore) Load() configuration.FanConfig {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("No stored profile found, storing defaults in %s", p.path)
		if err := p.Save(p.defaults); err != nil {
			ui.Warning("Unable to store default profile: %v", err)
		}
		return p.defaults.Clone()
	} else if err != nil {
		ui.Warning("Unable to read profile %s: %v", p.path, err)
		return p.defaults.Clone()
	}

	var config configuration.FanConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		ui.Warning("Profile %s is corrupt, using defaults: %v", p.path, err)
		return p.defaults.Clone()
	}
	return sanitize(config, p.defaults, p.path)
}

func (p *FileStore) Save(config configuration.FanConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	if err := ensureParentDir(p.path); err != nil {
		return err
	}
	return atomic.WriteFile(p.path, bytes.NewReader(data))
}
