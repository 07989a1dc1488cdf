package testingutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateHwmonDevice creates a fake hwmon device directory below root with the given
// "name" node content and additional nodes. Returns the device directory.
func CreateHwmonDevice(t *testing.T, root string, dirName string, name string, nodes map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, dirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if len(name) > 0 {
		WriteNode(t, filepath.Join(dir, "name"), name+"\n")
	}
	for node, content := range nodes {
		WriteNode(t, filepath.Join(dir, node), content)
	}
	return dir
}

// CreatePciDevice creates a fake PCI device directory below root with the given
// vendor id and runtime power status. Returns the device directory.
func CreatePciDevice(t *testing.T, root string, address string, vendor string, runtimeStatus string) string {
	t.Helper()
	dir := filepath.Join(root, address)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "power"), 0755))
	WriteNode(t, filepath.Join(dir, "vendor"), vendor+"\n")
	WriteNode(t, filepath.Join(dir, "power", "runtime_status"), runtimeStatus+"\n")
	return dir
}

// WriteNode creates or replaces a node with the given content.
func WriteNode(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// ReadNode returns the content of the given node.
func ReadNode(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}
