// SPDX-License-Identifier: MPL-2.0

package config

import (
	"strconv"
	"strings"
)

type (
	// VariableSource supplies job variables by name.
	VariableSource interface {
		Get(name string) (string, bool)
	}

	// BoolOption is a named boolean option resolved once at step
	// initialization. Sources are consulted in order: job variable,
	// process environment, loaded configuration, built-in default.
	// The first source holding a parseable boolean wins; unparseable
	// values fall through to the next source.
	BoolOption struct {
		// Name is the job-variable spelling of the option.
		Name string
		// EnvVar is the process-environment spelling. Empty disables
		// the environment source.
		EnvVar string
		// Default applies when no other source provides a value.
		Default bool

		// fromConfig reads the option's field from a loaded config.
		fromConfig func(*Config) bool
	}
)

// ContinueAfterCancelKillOption decides whether the cancellation sequence
// keeps running after the step's process tree has been sent a kill. When
// disabled the sequence is abandoned once the kill attempt completes.
var ContinueAfterCancelKillOption = BoolOption{
	Name:    "worker.continue.after.cancel.kill.attempt",
	EnvVar:  "AGENT_WORKER_CONTINUE_AFTER_CANCEL_KILL_ATTEMPT",
	Default: false,
	fromConfig: func(c *Config) bool {
		return c.Worker.ContinueAfterCancelKillAttempt
	},
}

// Resolve resolves the option against the source chain. Any argument may
// be nil; a nil source is skipped.
func (opt BoolOption) Resolve(vars VariableSource, getenv func(string) string, cfg *Config) bool {
	if vars != nil {
		if raw, ok := vars.Get(opt.Name); ok {
			if b, err := parseBool(raw); err == nil {
				return b
			}
		}
	}
	if opt.EnvVar != "" && getenv != nil {
		if raw := getenv(opt.EnvVar); raw != "" {
			if b, err := parseBool(raw); err == nil {
				return b
			}
		}
	}
	if cfg != nil && opt.fromConfig != nil {
		return opt.fromConfig(cfg)
	}
	return opt.Default
}

func parseBool(raw string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(raw))
}
