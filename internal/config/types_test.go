// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.ContainerEngine != ContainerEngineAuto {
		t.Errorf("default container engine = %s, want auto", cfg.ContainerEngine)
	}
	if cfg.Shell.Mode != ShellSystem {
		t.Errorf("default shell mode = %s, want system", cfg.Shell.Mode)
	}
	if cfg.Worker.ContinueAfterCancelKillAttempt {
		t.Error("expected continue_after_cancel_kill_attempt to be false by default")
	}
	if cfg.Worker.KillGracePeriodSeconds != 10 {
		t.Errorf("default kill grace period = %d, want 10", cfg.Worker.KillGracePeriodSeconds)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("default color scheme = %s, want auto", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose {
		t.Error("expected verbose to be false by default")
	}

	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is not valid: %v", errs)
	}
}

func TestContainerEngineIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		engine ContainerEngine
		want   bool
	}{
		{name: "auto", engine: ContainerEngineAuto, want: true},
		{name: "docker", engine: ContainerEngineDocker, want: true},
		{name: "podman", engine: ContainerEnginePodman, want: true},
		{name: "unknown", engine: ContainerEngine("lxc"), want: false},
		{name: "empty", engine: ContainerEngine(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.engine.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidContainerEngine) {
				t.Errorf("IsValid() error = %v, want %v", errs[0], ErrInvalidContainerEngine)
			}
		})
	}
}

func TestShellModeIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode ShellMode
		want bool
	}{
		{name: "system", mode: ShellSystem, want: true},
		{name: "embedded", mode: ShellEmbedded, want: true},
		{name: "unknown", mode: ShellMode("powershell"), want: false},
		{name: "empty", mode: ShellMode(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.mode.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !tt.want && !errors.Is(errs[0], ErrInvalidShellMode) {
				t.Errorf("IsValid() error = %v, want %v", errs[0], ErrInvalidShellMode)
			}
		})
	}
}

func TestWorkerConfigIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		grace int
		want  bool
	}{
		{name: "zero", grace: 0, want: true},
		{name: "typical", grace: 10, want: true},
		{name: "upper bound", grace: 300, want: true},
		{name: "negative", grace: -1, want: false},
		{name: "too large", grace: 301, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := WorkerConfig{KillGracePeriodSeconds: tt.grace}
			valid, errs := c.IsValid()
			if valid != tt.want {
				t.Fatalf("IsValid() = %v, want %v", valid, tt.want)
			}
			if !tt.want {
				var invalidErr *InvalidWorkerConfigError
				if !errors.As(errs[0], &invalidErr) {
					t.Fatalf("error type = %T, want *InvalidWorkerConfigError", errs[0])
				}
				if !errors.Is(invalidErr.FieldErrors[0], ErrInvalidKillGracePeriod) {
					t.Errorf("field error = %v, want %v", invalidErr.FieldErrors[0], ErrInvalidKillGracePeriod)
				}
			}
		})
	}
}

func TestConfigIsValidCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := Config{
		ContainerEngine: ContainerEngine("lxc"),
		Shell:           ShellConfig{Mode: ShellMode("zsh-only")},
		Worker:          WorkerConfig{KillGracePeriodSeconds: -5},
		UI:              UIConfig{ColorScheme: ColorScheme("sepia")},
	}

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("IsValid() = true, want false")
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1", len(errs))
	}

	var invalidErr *InvalidConfigError
	if !errors.As(errs[0], &invalidErr) {
		t.Fatalf("error type = %T, want *InvalidConfigError", errs[0])
	}
	if got, want := len(invalidErr.FieldErrors), 4; got != want {
		t.Errorf("len(FieldErrors) = %d, want %d", got, want)
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Error("errors.Is(err, ErrInvalidConfig) = false, want true")
	}
}
