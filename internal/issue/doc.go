// SPDX-License-Identifier: MPL-2.0

// Package issue turns worker failures into messages a user can act on.
//
// Two layers cooperate here. ActionableError is the structured error
// carried through the call stack: the operation that failed, the
// resource involved, fix suggestions, and the wrapped cause. The issue
// catalog maps recurring failure classes (no job file, no container
// engine, no shell) to longer markdown explanations rendered with
// glamour when the CLI decides the user needs more than one line.
package issue
