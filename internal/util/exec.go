package util

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/markusressel/hpfan/internal/ui"
)

// SafeCmdExecution runs the given executable and returns its trimmed stdout.
// The command is killed if it does not finish within timeout.
func SafeCmdExecution(executable string, args []string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, executable, args...)
	out, err := cmd.Output()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ui.Warning("Command timed out: %s", executable)
		return "", ctx.Err()
	}

	if err != nil {
		ui.Warning("Command failed to execute: %s", executable)
		return "", err
	}

	return strings.Trim(string(out), "\n"), nil
}
