package cmd

import (
	"errors"
	"fmt"

	"github.com/markusressel/hpfan/internal"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/hardware"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the current temperatures and fan speeds",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		configuration.ReadValidConfig()
		hw := internal.CreateHardware(configuration.CurrentConfig)
		stats := hw.GetSystemStats()

		fmt.Printf("CPU: %d°C, %d rpm\n", stats.CpuTemp, stats.CpuFanRpm)
		fmt.Printf("GPU: %d°C, %d rpm\n", stats.GpuTemp, stats.GpuFanRpm)

		// only release handles, the fan mode must stay as it is
		return closeSensors(hw)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func closeSensors(hw *hardware.Service) error {
	return errors.Join(hw.Cpu.Close(), hw.Gpu.Close())
}
