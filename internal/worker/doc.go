// SPDX-License-Identifier: MPL-2.0

// Package worker turns delivered jobs into running step processes.
//
// The package splits along the execution pipeline:
//
//   - ExecutionContext carries the per-step collaborator surface:
//     cancellation, job variables, the prepend-path sequence, resolved
//     worker options, and the warning sink.
//   - Composer projects a step's resources (service endpoints, secure
//     files, task inputs, variables) into the flat environment mapping
//     the step process receives. The key naming it produces is a wire
//     contract consumed by task runtimes; see env.go.
//   - StepHost abstracts the execution target (agent host or job
//     container) and owns host-to-target path translation.
//   - Invokers launch the composed command under a system shell, the
//     embedded interpreter, or a container engine exec, and translate
//     process termination into a Result.
//
// Runner ties the stages together: it walks a job's steps in order,
// composes each step's environment, and dispatches to the invoker the
// step's target and the shell mode select.
package worker
