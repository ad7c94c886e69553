// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"runtime"
)

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// WindowsEnvValueLimit is the maximum length of a single environment
// variable value on Windows. Values longer than this are silently
// truncated or rejected by some process-creation paths, so writes that
// exceed it are worth a warning even though they are not an error here.
const WindowsEnvValueLimit = 32766

// IsWindows reports whether the current process runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// PathListSeparator returns the separator used between entries of
// PATH-like variables on the current platform (":" on unix, ";" on
// Windows), as a string ready for strings.Join.
func PathListSeparator() string {
	return string(os.PathListSeparator)
}

// EnvValueLimit returns the maximum length of a single environment
// variable value on the current platform, or 0 when the platform imposes
// no practical limit.
func EnvValueLimit() int {
	return EnvValueLimitFor(runtime.GOOS)
}

// EnvValueLimitFor returns the per-value environment limit for the given
// GOOS. Pure function so tests can exercise the Windows branch from any
// platform.
func EnvValueLimitFor(goos string) int {
	if goos == Windows {
		return WindowsEnvValueLimit
	}
	return 0
}
