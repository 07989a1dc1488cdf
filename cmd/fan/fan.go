package fan

import (
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

// getDriver returns the detected fan driver.
// Callers don't close it, since that returns the fans to auto mode.
func getDriver() (*fans.HwMonDriver, error) {
	configuration.ReadValidConfig()
	config := configuration.CurrentConfig

	driver := fans.NewHwMonDriver(config.HwmonRoot, config.FanDriverName)
	if _, err := driver.Detect(); err != nil {
		return nil, err
	}
	return driver, nil
}
