package fan

import (
	"github.com/markusressel/hpfan/internal"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the stored fan profile to the default curves and mode",
	Long:  `A running daemon only picks up the change on restart.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configuration.ReadValidConfig()
		config := configuration.CurrentConfig

		ui.Info("Using profile backend: %s", config.Profile.Backend)
		store := internal.CreateStore(config)
		err := store.Save(internal.DefaultProfile(config))
		if err == nil {
			ui.Success("Done!")
		}

		return err
	},
}

func init() {
	Command.AddCommand(resetCmd)
}
