// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func TestEngineTypeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		et      EngineType
		wantErr bool
	}{
		{name: "docker", et: EngineDocker},
		{name: "podman", et: EnginePodman},
		{name: "unknown", et: EngineType("containerd"), wantErr: true},
		{name: "empty", et: EngineType(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.et.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEngineType) {
					t.Fatalf("Validate() error = %v, want %v", err, ErrInvalidEngineType)
				}
				var invalidErr *InvalidEngineTypeError
				if !errors.As(err, &invalidErr) {
					t.Fatalf("Validate() error type = %T, want *InvalidEngineTypeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestNewEngineRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(EngineType("lxc"))
	if !errors.Is(err, ErrInvalidEngineType) {
		t.Fatalf("NewEngine() error = %v, want %v", err, ErrInvalidEngineType)
	}
}

func TestAutoDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		onPath   map[string]bool
		wantName string
		wantErr  error
	}{
		{
			name:     "docker preferred",
			onPath:   map[string]bool{"docker": true, "podman": true},
			wantName: "docker",
		},
		{
			name:     "podman fallback",
			onPath:   map[string]bool{"podman": true},
			wantName: "podman",
		},
		{
			name:    "none available",
			onPath:  map[string]bool{},
			wantErr: ErrNoEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lookPath := func(file string) (string, error) {
				if tt.onPath[file] {
					return "/usr/bin/" + file, nil
				}
				return "", exec.ErrNotFound
			}

			e, err := AutoDetect(WithLookPath(lookPath))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AutoDetect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AutoDetect() error = %v", err)
			}
			if e.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", e.Name(), tt.wantName)
			}
		})
	}
}

func TestExecArgs(t *testing.T) {
	t.Parallel()

	e := &cliEngine{name: "docker"}

	tests := []struct {
		name string
		spec ExecSpec
		want []string
	}{
		{
			name: "minimal",
			spec: ExecSpec{
				Container: "job_ctr",
				Command:   []string{"sh", "-c", "echo hi"},
			},
			want: []string{"exec", "job_ctr", "sh", "-c", "echo hi"},
		},
		{
			name: "full",
			spec: ExecSpec{
				Container:   "job_ctr",
				WorkDir:     "/agent/work",
				User:        "1001",
				Interactive: true,
				Env: map[string]string{
					"INPUT_SCRIPT": "build.sh",
					"AGENT_OS":     "Linux",
				},
				Command: []string{"bash", "build.sh"},
			},
			want: []string{
				"exec", "-i", "-w", "/agent/work", "-u", "1001",
				"-e", "AGENT_OS=Linux",
				"-e", "INPUT_SCRIPT=build.sh",
				"job_ctr", "bash", "build.sh",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := e.execArgs(tt.spec)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("execArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngineExecUsesInjectedCommand(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotArgs []string
	execCommand := func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		gotName = name
		gotArgs = arg
		return exec.CommandContext(ctx, "true")
	}

	e, err := NewEngine(EnginePodman, WithExecCommand(execCommand))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	e.Exec(context.Background(), ExecSpec{
		Container: "ctr",
		Command:   []string{"env"},
	})

	if gotName != "podman" {
		t.Errorf("command name = %q, want %q", gotName, "podman")
	}
	want := []string{"exec", "ctr", "env"}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Errorf("command args = %q, want %q", gotArgs, want)
	}
}
