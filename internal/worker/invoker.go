// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
	"github.com/jandreu1/azure-pipelines-agent/pkg/platform"
)

// killConfirmTimeout bounds how long the worker waits for the step to
// be reaped after the hard kill. A tree that outlives this is treated
// as unkilled.
const killConfirmTimeout = 2 * time.Second

type (
	// InvocationSpec describes one step invocation: the command line,
	// where it runs, and the composed environment.
	InvocationSpec struct {
		// Command is the shell command line to run.
		Command string
		// WorkingDirectory is where the command starts. Empty inherits
		// the worker's own working directory.
		WorkingDirectory string
		// Environment is the composed step environment. Invokers merge
		// it over the worker's own environment.
		Environment map[string]string
		// Stdout and Stderr receive the step's output. Nil falls back
		// to the worker's own streams.
		Stdout io.Writer
		Stderr io.Writer
		// UsePTY runs the step under a pseudo-terminal so tools that
		// probe for one keep their interactive output. Platforms
		// without pty support fall back to pipes with a warning.
		UsePTY bool
	}

	// Invoker launches one composed step and reports how it ended.
	Invoker interface {
		// Name identifies the invoker in logs.
		Name() string
		// Invoke runs the step described by spec and blocks until it
		// finishes or the context's cancellation sequence disposes of
		// it.
		Invoke(ec *ExecutionContext, spec InvocationSpec) *Result
	}

	// ProcessInvoker runs steps under the system's default shell.
	ProcessInvoker struct {
		// Shell overrides shell discovery.
		Shell string
		// ShellArgs overrides the arguments placed before the command.
		ShellArgs []string
	}
)

// NewProcessInvoker returns an invoker that discovers the system shell.
func NewProcessInvoker() *ProcessInvoker {
	return &ProcessInvoker{}
}

// Name implements Invoker.
func (p *ProcessInvoker) Name() string { return "process" }

// Available reports whether a usable shell exists on this machine.
func (p *ProcessInvoker) Available() bool {
	_, err := p.resolveShell()
	return err == nil
}

// Invoke implements Invoker.
func (p *ProcessInvoker) Invoke(ec *ExecutionContext, spec InvocationSpec) *Result {
	shell, err := p.resolveShell()
	if err != nil {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("resolve a shell for the step").
			Suggest("Install bash or sh, or set shell.mode to \"embedded\" in the worker configuration").
			Cause(err).
			Err()}
	}

	args := append(p.shellArgs(shell), spec.Command)
	cmd := exec.Command(shell, args...)
	cmd.Dir = spec.WorkingDirectory
	cmd.Env = append(os.Environ(), EnvToSlice(spec.Environment)...)

	if spec.UsePTY {
		return p.invokePTY(ec, cmd, spec)
	}
	return p.invokePiped(ec, cmd, spec)
}

// invokePiped starts the step with plain pipes and runs the shared
// wait/cancel loop.
func (p *ProcessInvoker) invokePiped(ec *ExecutionContext, cmd *exec.Cmd, spec InvocationSpec) *Result {
	cmd.Stdout = writerOr(spec.Stdout, os.Stdout)
	cmd.Stderr = writerOr(spec.Stderr, os.Stderr)
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("start the step process").
			Resource(cmd.Path).
			Cause(err).
			Err()}
	}
	return waitWithCancel(ec, cmd)
}

// resolveShell picks the shell the step runs under: the configured
// override, then $SHELL, then the first of the platform's usual shells
// found on PATH.
func (p *ProcessInvoker) resolveShell() (string, error) {
	if p.Shell != "" {
		return p.Shell, nil
	}
	if platform.IsWindows() {
		for _, sh := range []string{"pwsh", "powershell", "cmd"} {
			if path, err := exec.LookPath(sh); err == nil {
				return path, nil
			}
		}
		return "", fmt.Errorf("no shell found")
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell, nil
	}
	for _, sh := range []string{"bash", "sh"} {
		if path, err := exec.LookPath(sh); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no shell found")
}

// shellArgs returns the arguments placed between the shell and the
// command line.
func (p *ProcessInvoker) shellArgs(shell string) []string {
	if len(p.ShellArgs) > 0 {
		return p.ShellArgs
	}
	base := strings.TrimSuffix(filepath.Base(shell), ".exe")
	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume a POSIX shell.
		return []string{"-c"}
	}
}

// waitWithCancel blocks on the started step. On cancellation it runs
// the kill sequence: a termination signal to the process tree, the
// configured grace period, then a hard kill. A tree that survives both
// is either tolerated with a warning or reported as fatal, per the
// continue-after-cancel-kill option.
func waitWithCancel(ec *ExecutionContext, cmd *exec.Cmd) *Result {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return resultFromWait(err)
	case <-ec.Context().Done():
	}

	waitErr, reaped := terminate(cmd, done, killGracePeriod(ec))
	if !reaped {
		if ec.ContinueAfterCancelKillAttempt() {
			ec.Warning("step process survived the kill attempt; continuing per worker.continue.after.cancel.kill.attempt")
			return &Result{ExitCode: -1, Canceled: true}
		}
		return &Result{ExitCode: -1, Canceled: true, Error: issue.NewContext().
			Operation("stop the canceled step's process tree").
			Suggest("Set worker.continue.after.cancel.kill.attempt to tolerate stuck steps during cancellation").
			Cause(fmt.Errorf("process did not exit within %s of the hard kill", killConfirmTimeout)).
			Err()}
	}

	res := resultFromWait(waitErr)
	res.Canceled = true
	return res
}

// terminate runs the two-stage kill: graceful signal, grace period,
// hard kill, confirm window. The returned bool reports whether the
// step was reaped.
func terminate(cmd *exec.Cmd, done <-chan error, grace time.Duration) (error, bool) {
	_ = terminateStep(cmd)
	select {
	case err := <-done:
		return err, true
	case <-time.After(grace):
	}

	_ = killStep(cmd)
	select {
	case err := <-done:
		return err, true
	case <-time.After(killConfirmTimeout):
		return nil, false
	}
}

// killGracePeriod reads the configured window between the graceful
// signal and the hard kill.
func killGracePeriod(ec *ExecutionContext) time.Duration {
	cfg := ec.Config()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return time.Duration(cfg.Worker.KillGracePeriodSeconds) * time.Second
}

func writerOr(w io.Writer, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
