// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

const (
	// EngineDocker selects the docker CLI.
	EngineDocker EngineType = "docker"
	// EnginePodman selects the podman CLI.
	EnginePodman EngineType = "podman"
)

var (
	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid engine type")

	// ErrNoEngine reports that auto-detection found neither docker nor podman.
	ErrNoEngine = errors.New("no container engine available")
)

type (
	// EngineType names a supported container engine CLI.
	EngineType string

	// InvalidEngineTypeError reports an engine name outside the known set.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// ExecCommandFunc creates the exec.Cmd an engine invocation runs.
	// Injection point for tests.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves a binary on PATH. Injection point for tests.
	LookPathFunc func(file string) (string, error)

	// ExecSpec describes one step execution inside a running container.
	ExecSpec struct {
		// Container is the engine-level container name or id.
		Container string
		// WorkDir is the working directory inside the container. Optional.
		WorkDir string
		// User is the uid[:gid] to run as. Optional.
		User string
		// Env is the composed environment delivered to the step.
		Env map[string]string
		// Interactive keeps stdin open (-i).
		Interactive bool
		// Command is the argv executed inside the container.
		Command []string
	}

	// Engine runs step commands inside a job's running containers.
	Engine interface {
		// Name returns the engine's CLI name.
		Name() string
		// Available reports whether the engine binary is on PATH.
		Available() bool
		// Version returns the engine's reported server version.
		Version(ctx context.Context) (string, error)
		// ContainerRunning reports whether the named container is up.
		ContainerRunning(ctx context.Context, nameOrID string) (bool, error)
		// Exec builds the command that runs spec inside its container.
		Exec(ctx context.Context, spec ExecSpec) *exec.Cmd
	}

	// Option configures a cliEngine.
	Option func(*cliEngine)

	// cliEngine shells out to a docker-compatible CLI. Docker and
	// podman differ only in binary name for the subset the worker uses.
	cliEngine struct {
		name        string
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
	}
)

func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid engine type %q (valid: %q, %q)", string(e.Value), EngineDocker, EnginePodman)
}

func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Validate checks the type is one of the known engines.
func (t EngineType) Validate() error {
	switch t {
	case EngineDocker, EnginePodman:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

func (t EngineType) String() string { return string(t) }

// WithExecCommand overrides how engine commands are created.
func WithExecCommand(f ExecCommandFunc) Option {
	return func(e *cliEngine) { e.execCommand = f }
}

// WithLookPath overrides how the engine binary is located.
func WithLookPath(f LookPathFunc) Option {
	return func(e *cliEngine) { e.lookPath = f }
}

// NewEngine returns the engine for an explicitly selected type.
func NewEngine(t EngineType, opts ...Option) (Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	e := &cliEngine{
		name:        string(t),
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AutoDetect returns the first available engine, preferring docker.
func AutoDetect(opts ...Option) (Engine, error) {
	for _, t := range []EngineType{EngineDocker, EnginePodman} {
		e, err := NewEngine(t, opts...)
		if err != nil {
			return nil, err
		}
		if e.Available() {
			return e, nil
		}
	}
	return nil, ErrNoEngine
}

func (e *cliEngine) Name() string {
	return e.name
}

func (e *cliEngine) Available() bool {
	_, err := e.lookPath(e.name)
	return err == nil
}

func (e *cliEngine) Version(ctx context.Context) (string, error) {
	cmd := e.execCommand(ctx, e.name, "version", "--format", "{{.Server.Version}}")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s version: %w", e.name, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *cliEngine) ContainerRunning(ctx context.Context, nameOrID string) (bool, error) {
	cmd := e.execCommand(ctx, e.name, "inspect", "--format", "{{.State.Running}}", nameOrID)
	out, err := cmd.Output()
	if err != nil {
		// Inspect fails when the container does not exist at all;
		// either way it is not running.
		return false, nil
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

func (e *cliEngine) Exec(ctx context.Context, spec ExecSpec) *exec.Cmd {
	return e.execCommand(ctx, e.name, e.execArgs(spec)...)
}

// execArgs builds the engine argv for one in-container step. Env flags
// are emitted in sorted key order so invocations are reproducible.
func (e *cliEngine) execArgs(spec ExecSpec) []string {
	args := []string{"exec"}
	if spec.Interactive {
		args = append(args, "-i")
	}
	if spec.WorkDir != "" {
		args = append(args, "-w", spec.WorkDir)
	}
	if spec.User != "" {
		args = append(args, "-u", spec.User)
	}
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}
	args = append(args, spec.Container)
	args = append(args, spec.Command...)
	return args
}
