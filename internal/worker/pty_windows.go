// SPDX-License-Identifier: MPL-2.0

//go:build windows

package worker

import "os/exec"

// invokePTY falls back to plain pipes; the worker does not allocate
// consoles on Windows.
func (p *ProcessInvoker) invokePTY(ec *ExecutionContext, cmd *exec.Cmd, spec InvocationSpec) *Result {
	ec.Warning("pty requested but not supported on this platform; running the step with pipes")
	return p.invokePiped(ec, cmd, spec)
}
