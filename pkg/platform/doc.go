// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes the platform-specific facts the worker
// depends on: operating system names for runtime.GOOS comparisons, the
// path-list separator used when composing PATH, and the per-variable
// environment size limit that only exists on Windows.
package platform
