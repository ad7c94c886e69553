// SPDX-License-Identifier: MPL-2.0

// Package config handles worker configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/agent-worker/config.cue (or XDG equivalent
// on Linux, ~/Library/Application Support/agent-worker/config.cue on macOS,
// %APPDATA%\agent-worker\config.cue on Windows), with AGENT_WORKER_* environment
// variables layered on top. The package also owns the TOML agent settings file
// written by 'agent-worker configure' and the boolean option table resolved at
// step initialization.
//
// Configuration validation is performed against a CUE schema (config_schema.cue)
// to ensure type safety and provide clear error messages for invalid configurations.
package config
