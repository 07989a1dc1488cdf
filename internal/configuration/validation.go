package configuration

import (
	"errors"
	"fmt"

	"github.com/markusressel/hpfan/internal/ui"
	"golang.org/x/exp/slices"
)

var supportedProfileBackends = []string{ProfileBackendBolt, ProfileBackendFile}

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if config.ControllerTickRate <= 0 {
		return fmt.Errorf("controllerTickRate must be positive, got %s", config.ControllerTickRate)
	}

	if len(config.CpuDrivers) <= 0 {
		return errors.New("cpuDrivers must not be empty")
	}
	if len(config.IntegratedGpuDrivers) <= 0 {
		return errors.New("integratedGpuDrivers must not be empty")
	}
	if len(config.FanDriverName) <= 0 {
		return errors.New("fanDriverName must not be empty")
	}
	if len(config.HwmonRoot) <= 0 {
		return errors.New("hwmonRoot must not be empty")
	}

	if config.SubscriberBufferSize < 0 {
		return fmt.Errorf("subscriberBufferSize must not be negative, got %d", config.SubscriberBufferSize)
	}

	if _, err := config.DefaultMode.MarshalText(); err != nil {
		return fmt.Errorf("defaultMode: %w", err)
	}

	if err := validateProfile(config.Profile, config.DbPath); err != nil {
		return err
	}

	if config.Statistics.Enabled {
		if err := validatePort("statistics.port", config.Statistics.Port); err != nil {
			return err
		}
	}
	if config.Api.Enabled {
		if err := validatePort("api.port", config.Api.Port); err != nil {
			return err
		}
		if config.Statistics.Enabled && config.Api.Port == config.Statistics.Port {
			return fmt.Errorf("api.port and statistics.port must differ, both are %d", config.Api.Port)
		}
	}

	return nil
}

func validateProfile(profile ProfileConfig, dbPath string) error {
	if !slices.Contains(supportedProfileBackends, profile.Backend) {
		return fmt.Errorf("profile.backend: unsupported backend '%s', use one of: %v", profile.Backend, supportedProfileBackends)
	}
	switch profile.Backend {
	case ProfileBackendBolt:
		if len(dbPath) <= 0 {
			return errors.New("dbPath must not be empty")
		}
	case ProfileBackendFile:
		if len(profile.Path) <= 0 {
			return errors.New("profile.path must not be empty")
		}
	}
	return nil
}

func validatePort(key string, port int) error {
	if port <= 0 || port >= 65535 {
		return fmt.Errorf("%s: invalid port %d", key, port)
	}
	return nil
}

// ReadValidConfig reads the config file and exits if the result is not valid
func ReadValidConfig() {
	ReadConfigFile()
	if err := Validate(); err != nil {
		ui.Fatal("Config validation failed: %v", err)
	}
}
