package chips

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/markusressel/hpfan/internal/hwmon"
	"github.com/md14454/gosensors"
)

const (
	BusTypeIsa  = 1
	BusTypePci  = 2
	BusTypeAcpi = 5
)

var platformRegex = regexp.MustCompile(".*/platform/[^/]+/")

type Feature struct {
	Name  string
	Label string
	Value float64
	IsFan bool
}

// Chip is a hwmon chip as reported by libsensors
type Chip struct {
	Identifier string
	Platform   string
	Path       string
	Features   []Feature
}

// GetChips lists all temperature and fan features known to libsensors.
func GetChips() []*Chip {
	gosensors.Init()
	defer gosensors.Cleanup()
	chips := gosensors.GetDetectedChips()

	var list []*Chip
	for _, chip := range chips {
		var features []Feature
		for _, feature := range chip.GetFeatures() {
			if feature.Type != gosensors.FeatureTypeTemp && feature.Type != gosensors.FeatureTypeFan {
				continue
			}
			features = append(features, Feature{
				Name:  feature.Name,
				Label: feature.GetLabel(),
				Value: feature.GetValue(),
				IsFan: feature.Type == gosensors.FeatureTypeFan,
			})
		}
		if len(features) <= 0 {
			continue
		}

		platform := findPlatform(chip.Path)
		identifier := computeIdentifier(chip)
		if len(platform) <= 0 {
			platform = identifier
		}

		list = append(list, &Chip{
			Identifier: identifier,
			Platform:   platform,
			Path:       chip.Path,
			Features:   features,
		})
	}

	return list
}

func computeIdentifier(chip gosensors.Chip) (name string) {
	name = chip.Prefix
	if len(name) <= 0 {
		name = readName(chip.Path)
	}
	if len(name) <= 0 {
		_, name = filepath.Split(chip.Path)
	}

	switch chip.Bus.Type {
	case BusTypeIsa:
		return fmt.Sprintf("%s-isa-%d%03x", name, chip.Bus.Nr, chip.Addr)
	case BusTypePci:
		return fmt.Sprintf("%s-pci-%d%03x", name, chip.Bus.Nr, chip.Addr)
	case BusTypeAcpi:
		return fmt.Sprintf("%s-acpi-%d", name, chip.Bus.Nr)
	}
	return name
}

func readName(devicePath string) string {
	content, _ := os.ReadFile(filepath.Join(devicePath, hwmon.NameNode))
	return strings.TrimSpace(string(content))
}

func findPlatform(devicePath string) string {
	match := platformRegex.FindString(devicePath)
	return strings.TrimSuffix(match, "/")
}
