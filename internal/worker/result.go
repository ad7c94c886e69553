// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"errors"
	"os/exec"
)

// Result is the outcome of one step invocation.
type Result struct {
	// ExitCode is the step process's exit code. A step that never
	// started, or died to a signal, reports -1 here with the detail in
	// Error or Canceled.
	ExitCode int
	// Canceled reports that the step was stopped by the cancellation
	// sequence rather than finishing on its own.
	Canceled bool
	// Error holds a launch or infrastructure failure. A nonzero exit
	// code from a process that ran is a step failure, not an Error.
	Error error
}

// Success reports whether the step ran to completion with exit code 0.
func (r *Result) Success() bool {
	return r.Error == nil && !r.Canceled && r.ExitCode == 0
}

// resultFromWait translates exec.Cmd.Wait's return into a Result. An
// ExitError means the process ran and reported a code; anything else is
// an infrastructure failure.
func resultFromWait(err error) *Result {
	if err == nil {
		return &Result{ExitCode: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Result{ExitCode: exitErr.ExitCode()}
	}
	return &Result{ExitCode: -1, Error: err}
}
