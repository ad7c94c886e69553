// SPDX-License-Identifier: MPL-2.0

// Package testutil holds small helpers shared by tests: Must* wrappers that
// fail the test instead of returning an error (MustSetenv, MustUnsetenv,
// MustWriteFile) and the shared container test semaphore
// (ContainerSemaphore).
package testutil
