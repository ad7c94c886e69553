// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package worker

import (
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
)

// invokePTY starts the step under a pseudo-terminal and runs the shared
// wait/cancel loop. pty.Start makes the child a session leader, which
// keeps the group-targeted kill sequence working without Setpgid.
func (p *ProcessInvoker) invokePTY(ec *ExecutionContext, cmd *exec.Cmd, spec InvocationSpec) *Result {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("start the step under a pseudo-terminal").
			Resource(cmd.Path).
			Suggest("Drop --pty to run the step with plain pipes").
			Cause(err).
			Err()}
	}

	out := writerOr(spec.Stdout, os.Stdout)
	drained := make(chan struct{})
	go func() {
		// Read errors here are the pty closing when the child exits.
		_, _ = io.Copy(out, ptmx)
		close(drained)
	}()

	res := waitWithCancel(ec, cmd)
	_ = ptmx.Close()
	<-drained
	return res
}
