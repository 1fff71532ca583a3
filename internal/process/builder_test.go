package process

import (
	"syscall"
	"testing"

	"github.com/randomizedcoder/go-proc-supervisor/internal/config"
)

func TestCommandConstruction(t *testing.T) {
	child := config.Child{
		Command:    []string{"/bin/sh", "-c", "echo hi"},
		Name:       "APP",
		TermSignal: syscall.SIGTERM,
	}

	cmd := Command(child)

	if cmd.Path != "/bin/sh" {
		t.Errorf("Path = %q, want /bin/sh", cmd.Path)
	}
	if len(cmd.Args) != 3 || cmd.Args[1] != "-c" || cmd.Args[2] != "echo hi" {
		t.Errorf("Args = %q", cmd.Args)
	}
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Error("child must be started in its own process group")
	}
	if cmd.Process != nil {
		t.Error("command must not be started")
	}
}

func TestCommandString(t *testing.T) {
	child := config.Child{Command: []string{"/usr/bin/echo", "check", "done"}}
	if got := CommandString(child); got != "/usr/bin/echo check done" {
		t.Errorf("CommandString = %q", got)
	}
}

func TestExitCodeNil(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestExitCodeNonZeroExit(t *testing.T) {
	cmd := Command(config.Child{Command: []string{"/bin/sh", "-c", "exit 3"}})
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start /bin/sh: %v", err)
	}
	err := cmd.Wait()
	if got := ExitCode(err); got != 3 {
		t.Errorf("ExitCode = %d, want 3", got)
	}
}

func TestExitCodeSignalDeath(t *testing.T) {
	cmd := Command(config.Child{Command: []string{"/bin/sh", "-c", "kill -TERM $$"}})
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start /bin/sh: %v", err)
	}
	err := cmd.Wait()
	want := 128 + int(syscall.SIGTERM)
	if got := ExitCode(err); got != want {
		t.Errorf("ExitCode = %d, want %d", got, want)
	}
}

func TestExitCodeUnknownError(t *testing.T) {
	if got := ExitCode(syscall.EINVAL); got != 1 {
		t.Errorf("ExitCode(EINVAL) = %d, want 1", got)
	}
}

func TestSignalGroupDeliversSignal(t *testing.T) {
	cmd := Command(config.Child{Command: []string{"/bin/sh", "-c", "sleep 30"}})
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start /bin/sh: %v", err)
	}

	if err := SignalGroup(cmd.Process.Pid, syscall.SIGKILL); err != nil {
		t.Fatalf("SignalGroup: %v", err)
	}

	err := cmd.Wait()
	if got := ExitCode(err); got != 128+int(syscall.SIGKILL) {
		t.Errorf("ExitCode after SIGKILL = %d", got)
	}
}
