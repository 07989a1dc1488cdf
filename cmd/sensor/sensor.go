package sensor

import (
	"fmt"

	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/gpu"
	"github.com/markusressel/hpfan/internal/sensors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	sensorIdCpu = "cpu"
	sensorIdGpu = "gpu"
)

var sensorId string

var Command = &cobra.Command{
	Use:              "sensor",
	Short:            "Print the current temperature of a sensor",
	Long:             ``,
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		sensor, err := getSensor(sensorId)
		if err != nil {
			return err
		}
		defer sensor.Close()

		fmt.Printf("%d", sensor.ReadTemperature())
		return nil
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&sensorId,
		"id", "i",
		sensorIdCpu,
		"Sensor ID, one of: cpu, gpu",
	)
}

func getSensor(id string) (sensors.Sensor, error) {
	configuration.ReadValidConfig()
	config := configuration.CurrentConfig

	switch id {
	case sensorIdCpu:
		return sensors.NewCpuSensor(config.HwmonRoot, config.CpuDrivers), nil
	case sensorIdGpu:
		var library gpu.Library
		if config.Nvml.Enabled.Get() {
			library = gpu.NvmlLibrary()
		}
		return gpu.NewSensor(
			gpu.NewDiscreteProvider(config.PciRoot, config.DiscreteGpuVendor, library),
			gpu.NewIntegratedProvider(config.HwmonRoot, config.IntegratedGpuDrivers),
		), nil
	default:
		return nil, fmt.Errorf("no sensor with id found: %s, options: [%s %s]", id, sensorIdCpu, sensorIdGpu)
	}
}
