package sysfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/markusressel/hpfan/internal/ui"
	"golang.org/x/sys/unix"
)

// Handle is a lazily opened file handle for a single sysfs node.
// The zero value is a closed handle. Any I/O failure closes the handle again,
// so the next access transparently reopens the node.
type Handle struct {
	file *os.File
	flag int
}

// IsOpen reports whether the handle currently holds an open file.
func (h *Handle) IsOpen() bool {
	return h.file != nil
}

// Close releases the underlying file, if any.
func (h *Handle) Close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	return err
}

func (h *Handle) reset() {
	_ = h.Close()
}

func (h *Handle) open(path string, flag int) error {
	if h.file != nil && h.flag == flag {
		return nil
	}
	h.reset()

	file, err := os.OpenFile(path, flag, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			ui.Debug("File not found: %s", path)
		} else {
			ui.Warning("Unable to open %s: %v", path, err)
		}
		return err
	}
	h.file = file
	h.flag = flag
	return nil
}

// read fills buf with the content of the node, starting at offset 0.
func (h *Handle) read(path string, buf []byte) (int, error) {
	if err := h.open(path, os.O_RDONLY); err != nil {
		return 0, err
	}
	n, err := unix.Pread(int(h.file.Fd()), buf, 0)
	if err != nil {
		ui.Warning("Failed to read from %s: %v", path, err)
		h.reset()
		return 0, err
	}
	return n, nil
}

// ReadInt reads the node at path and parses its content as a base-10 integer.
// Returns 0 if the node is missing, unreadable or does not contain an integer.
func ReadInt(h *Handle, path string, buf []byte) int {
	n, err := h.read(path, buf)
	if err != nil || n <= 0 {
		return 0
	}
	value, ok := ParseInt(buf[:n])
	if !ok {
		ui.Debug("Unable to parse integer from %s", path)
		return 0
	}
	return value
}

// WriteBytes writes data to the node at path, starting at offset 0.
// On failure the handle is reset and the error is returned to the caller.
func WriteBytes(h *Handle, path string, data []byte) error {
	if err := h.open(path, os.O_WRONLY); err != nil {
		return err
	}
	n, err := unix.Pwrite(int(h.file.Fd()), data, 0)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		h.reset()
		return fmt.Errorf("write to %s: %w", path, err)
	}
	return nil
}

// ContentEquals reports whether expected occurs anywhere in the content of the node.
// sysfs nodes usually carry a trailing newline, so this is a substring check.
func ContentEquals(h *Handle, path string, expected []byte, buf []byte) bool {
	n, err := h.read(path, buf)
	if err != nil || n < len(expected) {
		return false
	}
	return bytes.Contains(buf[:n], expected)
}

// ContentEqualsOnce opens path, checks its content and closes it again.
// Used during discovery, where a node is only inspected a single time.
func ContentEqualsOnce(path string, expected []byte, buf []byte) bool {
	var h Handle
	defer h.reset()
	return ContentEquals(&h, path, expected, buf)
}

// Exists reports whether a node exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListDir returns the full paths of all entries in dir, in directory order.
// Entries of sysfs class and bus directories are symlinks, so they are not filtered by type.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, filepath.Join(dir, entry.Name()))
	}
	return result, nil
}

// ParseInt parses a base-10 integer, ignoring surrounding whitespace.
func ParseInt(b []byte) (int, bool) {
	b = TrimSpace(b)
	if len(b) == 0 {
		return 0, false
	}

	negative := false
	switch b[0] {
	case '-':
		negative = true
		b = b[1:]
	case '+':
		b = b[1:]
	}
	if len(b) == 0 {
		return 0, false
	}

	value := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		digit := int(c - '0')
		if value > (math.MaxInt-digit)/10 {
			return 0, false
		}
		value = value*10 + digit
	}
	if negative {
		value = -value
	}
	return value, true
}

// TrimSpace removes leading and trailing spaces, tabs, newlines and carriage returns.
func TrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isWhitespace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isWhitespace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
