package hwmon

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/markusressel/hpfan/internal/sysfs"
)

const (
	DefaultRoot = "/sys/class/hwmon"

	NameNode = "name"
)

var ErrNotFound = errors.New("no matching hwmon device found")

// Match describes a discovered hwmon node
type Match struct {
	// Dir is the hwmon device directory, e.g. /sys/class/hwmon/hwmon3
	Dir string
	// Driver is the driver name that matched the "name" node
	Driver string
	// Path is the requested node inside Dir
	Path string
}

// FindByDriverPriority searches the devices below root for one whose "name" node
// contains a driver from the given list and which provides the given node.
// Drivers are tried in order, each one against all devices, so an earlier
// driver always wins over a later one, regardless of device order.
func FindByDriverPriority(root string, drivers []string, node string) (Match, error) {
	devices, err := sysfs.ListDir(root)
	if err != nil {
		return Match{}, fmt.Errorf("unable to list %s: %w", root, err)
	}

	buf := make([]byte, 64)
	for _, driver := range drivers {
		expected := []byte(driver)
		for _, dir := range devices {
			if !sysfs.ContentEqualsOnce(filepath.Join(dir, NameNode), expected, buf) {
				continue
			}
			path := filepath.Join(dir, node)
			if !sysfs.Exists(path) {
				continue
			}
			return Match{
				Dir:    dir,
				Driver: driver,
				Path:   path,
			}, nil
		}
	}

	return Match{}, ErrNotFound
}
