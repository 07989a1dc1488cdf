package curve

import (
	"bytes"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/hpfan/cmd/global"
	"github.com/markusressel/hpfan/internal"
	"github.com/markusressel/hpfan/internal/configuration"
	"github.com/markusressel/hpfan/internal/curves"
	"github.com/markusressel/hpfan/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

const (
	graphMinTemperature = 30
	graphMaxTemperature = 100
)

var Command = &cobra.Command{
	Use:              "curve",
	Short:            "Print the stored fan curves to console",
	TraverseChildren: true,
	Args:             cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile := loadProfile()

		ui.Printfln("Mode: %s", profile.LastMode)
		ui.Printfln("")
		printCurve("CPU", profile.CpuCurve)
		ui.Printfln("")
		ui.Printfln("")
		printCurve("GPU", profile.GpuCurve)
		return nil
	},
}

func loadProfile() configuration.FanConfig {
	configuration.ReadValidConfig()
	return internal.CreateStore(configuration.CurrentConfig).Load()
}

func printCurve(name string, curve curves.Curve) {
	ui.Printfln("%s", name)

	// print table
	var rows [][]string
	for _, point := range curve {
		rows = append(rows, []string{
			strconv.Itoa(point.Temperature),
			strconv.Itoa(point.Speed),
			strconv.Itoa(point.Speed * 100 / 255),
		})
	}
	tab := table.Table{
		Headers: []string{"Temp (°C)", "PWM", "%"},
		Rows:    rows,
	}
	var buf bytes.Buffer
	tableErr := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !global.NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if tableErr != nil {
		panic(tableErr)
	}
	ui.Printfln("%s", buf.String())

	// print graph
	values := make([]float64, 0, graphMaxTemperature-graphMinTemperature+1)
	for temp := graphMinTemperature; temp <= graphMaxTemperature; temp++ {
		values = append(values, float64(curves.Calculate(temp, curve)))
	}

	caption := "PWM / Temperature (" + strconv.Itoa(graphMinTemperature) + ".." + strconv.Itoa(graphMaxTemperature) + " °C)"
	graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
	ui.Printfln("%s", graph)
}
