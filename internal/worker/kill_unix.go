// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package worker

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup places the step in its own process group so the
// kill sequence reaches everything the shell spawned, not just the
// shell.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateStep delivers SIGTERM to the step's process group.
func terminateStep(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGTERM)
}

// killStep delivers SIGKILL to the step's process group.
func killStep(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGKILL)
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	// The group id equals the leader's pid under Setpgid, and under a
	// pty's Setsid the child is a session leader with the same
	// property.
	return syscall.Kill(-cmd.Process.Pid, sig)
}
