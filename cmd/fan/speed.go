package fan

import (
	"fmt"
	"strconv"

	"github.com/markusressel/hpfan/internal/fans"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var gpuFan bool

var speedCmd = &cobra.Command{
	Use:   "speed <pwm>",
	Short: "Set the speed of a fan to the given PWM value ([0..255])",
	Long:  `Only has an effect while the fans are in manual mode, see "fan mode".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		pwmValue, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		if pwmValue < fans.MinPwmValue || pwmValue > fans.MaxPwmValue {
			return fmt.Errorf("pwm value out of range: %d", pwmValue)
		}

		driver, err := getDriver()
		if err != nil {
			return err
		}
		return driver.SetSpeed(gpuFan, pwmValue)
	},
}

func init() {
	speedCmd.Flags().BoolVarP(&gpuFan, "gpu", "g", false, "Set the speed of the GPU fan instead of the CPU fan")
	Command.AddCommand(speedCmd)
}
