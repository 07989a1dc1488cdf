package configuration

import (
	"errors"
	"os"
	"time"

	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/gpu"
	"github.com/markusressel/hpfan/internal/hwmon"
	"github.com/markusressel/hpfan/internal/sensors"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	Profile ProfileConfig `json:"profile"`

	// DefaultMode is used when no profile has been stored yet
	DefaultMode fans.Mode `json:"defaultMode"`

	ControllerTickRate time.Duration `json:"controllerTickRate"`

	HwmonRoot            string   `json:"hwmonRoot"`
	PciRoot              string   `json:"pciRoot"`
	CpuDrivers           []string `json:"cpuDrivers"`
	IntegratedGpuDrivers []string `json:"integratedGpuDrivers"`
	FanDriverName        string   `json:"fanDriverName"`
	DiscreteGpuVendor    string   `json:"discreteGpuVendor"`

	Nvml NvmlConfig `json:"nvml"`

	SubscriberBufferSize int `json:"subscriberBufferSize"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
}

type NvmlConfig struct {
	Enabled DefaultTrueBool `json:"enabled"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("hpfan")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/hpfan/")
	}

	viper.SetEnvPrefix("HPFAN")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbPath", "/etc/hpfan/hpfan.db")
	viper.SetDefault("profile.backend", ProfileBackendBolt)
	viper.SetDefault("profile.path", "/etc/hpfan/profile.yaml")
	viper.SetDefault("defaultMode", fans.ModeAuto.String())

	viper.SetDefault("controllerTickRate", 1*time.Second)

	viper.SetDefault("hwmonRoot", hwmon.DefaultRoot)
	viper.SetDefault("pciRoot", gpu.DefaultPciRoot)
	viper.SetDefault("cpuDrivers", sensors.DefaultCpuDrivers)
	viper.SetDefault("integratedGpuDrivers", gpu.DefaultIntegratedDrivers)
	viper.SetDefault("fanDriverName", fans.DefaultDriverName)
	viper.SetDefault("discreteGpuVendor", gpu.NvidiaVendorId)

	// no default, an absent value is decoded as true by DefaultTrueBool
	_ = viper.BindEnv("nvml.enabled")

	viper.SetDefault("subscriberBufferSize", 8)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)
}

// ReadConfigFile reads the config file, if there is one.
// hpfan runs fine on defaults, so a missing file is not an error.
func ReadConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			ui.Fatal("Error reading config file, %s", err)
		}
		ui.Debug("No config file found, using defaults")
	} else {
		// this is only populated _after_ ReadInConfig()
		ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	LoadConfig()
}

// DetectConfigFile returns the path of the config file in use, if any
func DetectConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		return ""
	}
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	if err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHooks())); err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		FanModeHookFunc(),
		DefaultTrueBoolHookFunc(),
	)
}
