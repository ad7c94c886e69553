// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"fmt"
	"os"

	"mvdan.cc/sh/v3/syntax"

	"github.com/jandreu1/azure-pipelines-agent/internal/container"
	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
)

// ContainerInvoker execs steps inside one of the job's running
// containers.
type ContainerInvoker struct {
	engine container.Engine
	host   *ContainerStepHost
}

// NewContainerInvoker pairs an engine with the container the steps
// target.
func NewContainerInvoker(engine container.Engine, host *ContainerStepHost) (*ContainerInvoker, error) {
	if engine == nil {
		return nil, &MissingCollaboratorError{Field: "engine"}
	}
	if host == nil {
		return nil, &MissingCollaboratorError{Field: "host"}
	}
	return &ContainerInvoker{engine: engine, host: host}, nil
}

// Name implements Invoker.
func (ci *ContainerInvoker) Name() string { return "container" }

// Invoke implements Invoker. The step runs under "sh -c" inside the
// container. The composed prepend segment is folded into PATH in
// there, where the container's own PATH is visible; pushing a final
// PATH through the environment mapping would bake in the host's.
func (ci *ContainerInvoker) Invoke(ec *ExecutionContext, spec InvocationSpec) *Result {
	running, err := ci.engine.ContainerRunning(ec.Context(), ci.host.ContainerName)
	if err != nil {
		return &Result{ExitCode: -1, Error: issue.WrapResource(err, "inspect the job container", ci.host.ContainerName)}
	}
	if !running {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("run the step in the job container").
			Resource(ci.host.ContainerName).
			Suggest(fmt.Sprintf("Start it first: %s start %s", ci.engine.Name(), ci.host.ContainerName)).
			Cause(fmt.Errorf("container is not running")).
			Err()}
	}

	command := spec.Command
	if ci.host.PrependPath != "" {
		// Job containers run linux, so the list separator is ":" no
		// matter what the host uses.
		quoted, err := syntax.Quote(ci.host.PrependPath, syntax.LangPOSIX)
		if err != nil {
			return &Result{ExitCode: -1, Error: issue.Wrap(err, "quote the PATH prepend segment")}
		}
		command = fmt.Sprintf("export PATH=%s:\"$PATH\"\n%s", quoted, command)
	}

	workDir := ci.host.WorkingDirectory
	if spec.WorkingDirectory != "" {
		workDir = ci.host.ResolvePath(spec.WorkingDirectory)
	}

	cmd := ci.engine.Exec(ec.Context(), container.ExecSpec{
		Container: ci.host.ContainerName,
		WorkDir:   workDir,
		User:      ci.host.User,
		Env:       spec.Environment,
		Command:   []string{"sh", "-c", command},
	})
	cmd.Stdout = writerOr(spec.Stdout, os.Stdout)
	cmd.Stderr = writerOr(spec.Stderr, os.Stderr)
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("start the container exec").
			Resource(ci.host.ContainerName).
			Suggest(fmt.Sprintf("Check that %q is still on PATH", ci.engine.Name())).
			Cause(err).
			Err()}
	}

	res := waitWithCancel(ec, cmd)
	// 125 and 126 come from the engine itself, not the step: the exec
	// never reached the command.
	if res.Error == nil && !res.Canceled && (res.ExitCode == 125 || res.ExitCode == 126) {
		res.Error = issue.NewContext().
			Operation("exec into the job container").
			Resource(ci.host.ContainerName).
			Suggest(fmt.Sprintf("Check '%s logs %s' for engine-side failures", ci.engine.Name(), ci.host.ContainerName)).
			Cause(fmt.Errorf("engine reported exit code %d", res.ExitCode)).
			Err()
	}
	return res
}
