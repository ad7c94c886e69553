// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"errors"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
)

// EmbeddedInvoker runs steps inside the built-in POSIX shell
// interpreter instead of a system shell. It needs nothing installed on
// the host, at the cost of shell features the interpreter does not
// implement.
type EmbeddedInvoker struct{}

// NewEmbeddedInvoker returns the embedded-interpreter invoker.
func NewEmbeddedInvoker() *EmbeddedInvoker {
	return &EmbeddedInvoker{}
}

// Name implements Invoker.
func (e *EmbeddedInvoker) Name() string { return "embedded" }

// Invoke implements Invoker. Cancellation flows through the context
// into the interpreter; there is no external process tree, so the kill
// sequence does not apply here.
func (e *EmbeddedInvoker) Invoke(ec *ExecutionContext, spec InvocationSpec) *Result {
	prog, err := syntax.NewParser().Parse(strings.NewReader(spec.Command), "step")
	if err != nil {
		return &Result{ExitCode: -1, Error: issue.NewContext().
			Operation("parse the step command").
			Suggest("Check the command for unbalanced quotes or redirects").
			Cause(err).
			Err()}
	}

	env := append(os.Environ(), EnvToSlice(spec.Environment)...)
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, writerOr(spec.Stdout, os.Stdout), writerOr(spec.Stderr, os.Stderr)),
	}
	if spec.WorkingDirectory != "" {
		opts = append(opts, interp.Dir(spec.WorkingDirectory))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: -1, Error: issue.Wrap(err, "create the embedded interpreter")}
	}

	if err := runner.Run(ec.Context(), prog); err != nil {
		if ec.Context().Err() != nil {
			return &Result{ExitCode: -1, Canceled: true}
		}
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: int(exitStatus)}
		}
		return &Result{ExitCode: -1, Error: issue.Wrap(err, "run the step in the embedded interpreter")}
	}
	return &Result{ExitCode: 0}
}
