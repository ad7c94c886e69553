// SPDX-License-Identifier: MPL-2.0

//go:build windows

package worker

import "os/exec"

// configureProcessGroup is a no-op on Windows; the kill sequence only
// reaches the direct child there.
func configureProcessGroup(cmd *exec.Cmd) {}

// terminateStep has no graceful equivalent on Windows. The grace period
// still elapses before the hard kill so the step gets the same window
// to wind down on its own.
func terminateStep(cmd *exec.Cmd) error { return nil }

// killStep hard-kills the step process.
func killStep(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
