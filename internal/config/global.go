// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects ConfigDir for tests. os.UserHomeDir does not
// honor a test-scoped HOME on every platform, so tests point lookups at an
// explicit directory instead of faking the environment.
var configDirOverride string

// SetConfigDirOverride redirects configuration directory lookups to dir
// until Reset is called. Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores the default configuration directory lookup.
func Reset() {
	configDirOverride = ""
}
