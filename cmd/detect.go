package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/markusressel/hpfan/cmd/global"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/fans"
	"github.com/markusressel/hpfan/internal/gpu"
	"github.com/markusressel/hpfan/internal/hwmon/chips"
	"github.com/markusressel/hpfan/internal/sensors"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

const notFound = "not found"

var detectAll bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect devices",
	Long:  `Detects the temperature sensors and the fan controller and prints them as a list`,
	Run: func(cmd *cobra.Command, args []string) {
		configuration.ReadValidConfig()
		config := configuration.CurrentConfig

		cpuSensor := sensors.NewCpuSensor(config.HwmonRoot, config.CpuDrivers)
		defer cpuSensor.Close()
		integrated := gpu.NewIntegratedProvider(config.HwmonRoot, config.IntegratedGpuDrivers)
		defer integrated.Close()
		discrete := gpu.NewDiscreteProvider(config.PciRoot, config.DiscreteGpuVendor, nil)
		defer discrete.Close()
		driver := fans.NewHwMonDriver(config.HwmonRoot, config.FanDriverName)

		var rows [][]string

		cpuPath, found := cpuSensor.FindPath()
		rows = append(rows, detectionRow("CPU sensor", cpuSensor.Driver(), cpuPath, found))

		integratedFound := integrated.Initialize() == nil
		rows = append(rows, detectionRow("Integrated GPU", "", integrated.Path(), integratedFound))

		discreteFound := discrete.Initialize() == nil
		discreteStatus := discrete.StatusPath()
		if discreteFound {
			state := "suspended"
			if discrete.IsActive() {
				state = "active"
			}
			discreteStatus = fmt.Sprintf("%s (%s)", discreteStatus, state)
		}
		rows = append(rows, detectionRow("Discrete GPU", config.DiscreteGpuVendor, discreteStatus, discreteFound))

		fanDir, err := driver.Detect()
		rows = append(rows, detectionRow("Fan controller", config.FanDriverName, fanDir, err == nil))

		printTable(table.Table{
			Headers: []string{"Component", "Driver", "Path"},
			Rows:    rows,
		})

		if detectAll {
			printChips()
			printKernelSensors()
		}
	},
}

func detectionRow(name string, driver string, path string, found bool) []string {
	if !found {
		path = notFound
	}
	return []string{name, driver, path}
}

// printChips lists everything libsensors knows about
func printChips() {
	for _, chip := range chips.GetChips() {
		ui.Printfln("> %s (%s)", chip.Identifier, chip.Platform)

		var rows [][]string
		for _, feature := range chip.Features {
			kind := "Sensor"
			value := strconv.FormatFloat(feature.Value, 'f', 1, 64)
			if feature.IsFan {
				kind = "Fan"
				value = strconv.Itoa(int(feature.Value))
			}
			rows = append(rows, []string{kind, feature.Name, feature.Label, value})
		}
		printTable(table.Table{
			Headers: []string{"Type", "Name", "Label", "Value"},
			Rows:    rows,
		})
	}
}

// printKernelSensors lists the temperatures as reported by the kernel
func printKernelSensors() {
	temperatures, err := host.SensorsTemperatures()
	if err != nil && len(temperatures) == 0 {
		ui.Warning("Unable to read kernel temperature sensors: %v", err)
		return
	}

	ui.Printfln("> kernel")
	var rows [][]string
	for _, temperature := range temperatures {
		rows = append(rows, []string{
			temperature.SensorKey,
			strconv.FormatFloat(temperature.Temperature, 'f', 1, 64),
			strconv.FormatFloat(temperature.High, 'f', 1, 64),
			strconv.FormatFloat(temperature.Critical, 'f', 1, 64),
		})
	}
	printTable(table.Table{
		Headers: []string{"Sensor", "Value", "High", "Critical"},
		Rows:    rows,
	})
}

func printTable(t table.Table) {
	if t.Rows == nil {
		return
	}
	tableConfig := &table.Config{
		ShowIndex:       false,
		Color:           !global.NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	}

	var buf bytes.Buffer
	if err := t.WriteTable(&buf, tableConfig); err != nil {
		ui.Fatal("Error printing table: %v", err)
	}
	ui.Printfln("%s", buf.String())
}

func init() {
	detectCmd.Flags().BoolVarP(&detectAll, "all", "a", false, "Also list all libsensors chips and kernel temperature sensors")
	rootCmd.AddCommand(detectCmd)
}
