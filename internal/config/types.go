// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEngineAuto probes for docker first, then podman.
	ContainerEngineAuto ContainerEngine = "auto"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"

	// ShellSystem runs host steps through the system shell.
	ShellSystem ShellMode = "system"
	// ShellEmbedded runs host steps in the embedded POSIX interpreter.
	ShellEmbedded ShellMode = "embedded"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidShellMode is returned when a ShellMode value is not recognized.
	ErrInvalidShellMode = errors.New("invalid shell mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidKillGracePeriod is returned when the kill grace period is out of range.
	ErrInvalidKillGracePeriod = errors.New("invalid kill grace period")
	// ErrInvalidWorkerConfig is the sentinel error wrapped by InvalidWorkerConfigError.
	ErrInvalidWorkerConfig = errors.New("invalid worker config")
	// ErrInvalidShellConfig is the sentinel error wrapped by InvalidShellConfigError.
	ErrInvalidShellConfig = errors.New("invalid shell config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use for
	// container-target steps.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ShellMode specifies how host-target step commands are executed.
	ShellMode string

	// InvalidShellModeError is returned when a ShellMode value is not recognized.
	// It wraps ErrInvalidShellMode for errors.Is() compatibility.
	InvalidShellModeError struct {
		Value ShellMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidKillGracePeriodError is returned when the kill grace period
	// is negative or larger than maxKillGracePeriodSeconds.
	InvalidKillGracePeriodError struct {
		Value int
	}

	// InvalidWorkerConfigError is returned when a WorkerConfig has invalid fields.
	// It wraps ErrInvalidWorkerConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidWorkerConfigError struct {
		FieldErrors []error
	}

	// InvalidShellConfigError is returned when a ShellConfig has invalid fields.
	// It wraps ErrInvalidShellConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidShellConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the worker configuration.
	Config struct {
		// ContainerEngine selects the runtime for container-target steps
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// Shell configures host-target step execution
		Shell ShellConfig `json:"shell" mapstructure:"shell"`
		// Worker configures step lifecycle behavior
		Worker WorkerConfig `json:"worker" mapstructure:"worker"`
		// UI configures terminal output
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ShellConfig configures host-target step execution.
	ShellConfig struct {
		// Mode selects the system shell or the embedded interpreter
		Mode ShellMode `json:"mode" mapstructure:"mode"`
	}

	// WorkerConfig configures step lifecycle behavior.
	WorkerConfig struct {
		// ContinueAfterCancelKillAttempt keeps the cancellation sequence
		// going after a process-tree kill attempt instead of abandoning it.
		// Overridable per job; see ContinueAfterCancelKillOption.
		ContinueAfterCancelKillAttempt bool `json:"continue_after_cancel_kill_attempt" mapstructure:"continue_after_cancel_kill_attempt"`
		// KillGracePeriodSeconds is how long a canceled step's process
		// tree gets between SIGTERM and SIGKILL.
		KillGracePeriodSeconds int `json:"kill_grace_period_seconds" mapstructure:"kill_grace_period_seconds"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// maxKillGracePeriodSeconds bounds the SIGTERM grace window. A step that
// ignores SIGTERM for five minutes is not going to stop on its own.
const maxKillGracePeriodSeconds = 300

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: auto, docker, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error {
	return ErrInvalidContainerEngine
}

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEngineAuto, ContainerEngineDocker, ContainerEnginePodman:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidShellModeError.
func (e *InvalidShellModeError) Error() string {
	return fmt.Sprintf("invalid shell mode %q (valid: system, embedded)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidShellModeError) Unwrap() error {
	return ErrInvalidShellMode
}

// String returns the string representation of the ShellMode.
func (m ShellMode) String() string { return string(m) }

// IsValid returns whether the ShellMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m ShellMode) IsValid() (bool, []error) {
	switch m {
	case ShellSystem, ShellEmbedded:
		return true, nil
	default:
		return false, []error{&InvalidShellModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidKillGracePeriodError.
func (e *InvalidKillGracePeriodError) Error() string {
	return fmt.Sprintf("invalid kill grace period %d: must be between 0 and %d seconds", e.Value, maxKillGracePeriodSeconds)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidKillGracePeriodError) Unwrap() error { return ErrInvalidKillGracePeriod }

// IsValid returns whether the ShellConfig has valid fields.
// It delegates to Mode.IsValid().
func (c ShellConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidShellConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidShellConfigError.
func (e *InvalidShellConfigError) Error() string {
	return fmt.Sprintf("invalid shell config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidShellConfig for errors.Is() compatibility.
func (e *InvalidShellConfigError) Unwrap() error { return ErrInvalidShellConfig }

// IsValid returns whether the WorkerConfig has valid fields.
// It checks KillGracePeriodSeconds range; bool fields need no validation.
func (c WorkerConfig) IsValid() (bool, []error) {
	var errs []error
	if c.KillGracePeriodSeconds < 0 || c.KillGracePeriodSeconds > maxKillGracePeriodSeconds {
		errs = append(errs, &InvalidKillGracePeriodError{Value: c.KillGracePeriodSeconds})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWorkerConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWorkerConfigError.
func (e *InvalidWorkerConfigError) Error() string {
	return fmt.Sprintf("invalid worker config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWorkerConfig for errors.Is() compatibility.
func (e *InvalidWorkerConfigError) Unwrap() error { return ErrInvalidWorkerConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ContainerEngine.IsValid(), Shell.IsValid(),
// Worker.IsValid(), and UI.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Shell.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Worker.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config: %d field error(s)", len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		fmt.Fprintf(&b, "\n  - %v", err)
	}
	return b.String()
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineAuto,
		Shell: ShellConfig{
			Mode: ShellSystem,
		},
		Worker: WorkerConfig{
			ContinueAfterCancelKillAttempt: false,
			KillGracePeriodSeconds:         10,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
