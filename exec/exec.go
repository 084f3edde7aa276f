// Package exec implements audio capture and playback by running external
// commands such as arecord and aplay.
package exec

import (
	"errors"
	"fmt"
	"io/fs"
	osexec "os/exec"
	"strings"
	"syscall"

	"github.com/fwojciec/converse"
)

// command builds a Cmd that runs in its own process group so signals reach
// every process the command spawns.
func command(path string, args []string) *osexec.Cmd {
	cmd := osexec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

// signalGroup sends sig to the process group led by cmd. A group that has
// already exited is not an error.
func signalGroup(cmd *osexec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// lookPath resolves the executable named by argv[0]. A missing command
// wraps unavailable; one that may not be executed wraps denied.
func lookPath(argv []string, unavailable, denied error) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", fmt.Errorf("empty command: %w", unavailable)
	}
	path, err := osexec.LookPath(argv[0])
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("%s: %w", argv[0], denied)
		}
		return "", fmt.Errorf("%s not found: %w", argv[0], unavailable)
	}
	return path, nil
}

// classify maps a failed start or exit to a device sentinel. diag is the
// command's cleaned diagnostic output and may be empty.
func classify(name string, err error, diag string) error {
	sentinel := converse.ErrDeviceUnavailable
	if errors.Is(err, fs.ErrPermission) || mentionsPermission(diag) {
		sentinel = converse.ErrPermissionDenied
	}
	if diag == "" {
		diag = err.Error()
	}
	return fmt.Errorf("%s: %w: %s", name, sentinel, diag)
}

func mentionsPermission(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "permission denied") || strings.Contains(s, "not permitted")
}
