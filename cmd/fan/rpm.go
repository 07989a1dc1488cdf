package fan

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rpmCmd = &cobra.Command{
	Use:   "rpm",
	Short: "Get the current RPM reading of both fans",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		driver, err := getDriver()
		if err != nil {
			return err
		}

		cpu, gpu := driver.GetRpms()
		fmt.Printf("cpu: %d\ngpu: %d\n", cpu, gpu)
		return nil
	},
}

func init() {
	Command.AddCommand(rpmCmd)
}
