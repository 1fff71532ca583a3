// Package process provides abstractions for running supervised child
// processes.
package process

import (
	"errors"
	"os/exec"
	"strings"
	"syscall"

	"github.com/randomizedcoder/go-proc-supervisor/internal/config"
)

// Command returns a ready-to-start command for the given child definition.
// The command is NOT started yet. Children are placed in their own process
// group so that graceful and forceful signals reach the whole subtree.
func Command(child config.Child) *exec.Cmd {
	cmd := exec.Command(child.Command[0], child.Command[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	return cmd
}

// CommandString renders the child command for diagnostics.
func CommandString(child config.Child) string {
	return strings.Join(child.Command, " ")
}

// SignalGroup sends sig to the child's process group, falling back to the
// single process when the group cannot be resolved.
func SignalGroup(pid int, sig syscall.Signal) error {
	if pgid, err := syscall.Getpgid(pid); err == nil {
		return syscall.Kill(-pgid, sig)
	}
	return syscall.Kill(pid, sig)
}

// ExitCode extracts the exit code from a Wait() error.
// Signal deaths map to 128 + signal number; unknown errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	return 1
}
