package process

// Notes:
// - KillProcessGroup: only an invalid PID is used. Killing real groups is
//   covered by the executor tests that cancel a running command.
// - PID 0 would target the test binary's own process group.

import (
	"os/exec"
	"testing"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestIsolate(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Isolate(cmd)
	if cmd.SysProcAttr == nil {
		t.Fatal("SysProcAttr = nil after Isolate")
	}

	// Calling twice keeps the existing attributes.
	attr := cmd.SysProcAttr
	Isolate(cmd)
	if cmd.SysProcAttr != attr {
		t.Error("Isolate replaced existing SysProcAttr")
	}
}
