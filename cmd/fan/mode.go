package fan

import (
	"fmt"

	"github.com/markusressel/hpfan/internal/fans"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:       "mode [auto|manual|max]",
	Short:     "Get/Set the current fan mode",
	Long:      ``,
	Args:      cobra.RangeArgs(0, 1),
	ValidArgs: []string{fans.ModeAuto.String(), fans.ModeManual.String(), fans.ModeMax.String()},
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		if len(args) > 0 {
			mode, err := fans.ParseMode(args[0])
			if err != nil {
				return fmt.Errorf("%w, must be one of: 'auto', 'manual', 'max'", err)
			}

			driver, err := getDriver()
			if err != nil {
				return err
			}
			return driver.SetMode(mode)
		}

		driver, err := getDriver()
		if err != nil {
			return err
		}
		mode, err := driver.GetMode()
		if err != nil {
			return err
		}

		switch mode {
		case fans.ModeMax:
			fmt.Printf("No control, 100%% all the time (%s)", mode)
		case fans.ModeManual:
			fmt.Printf("Manual PWM control, gives hpfan control (%s)", mode)
		default:
			fmt.Printf("Automatic control by the embedded controller (%s)", mode)
		}
		return nil
	},
}

func init() {
	Command.AddCommand(modeCmd)
}
