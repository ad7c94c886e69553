// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
)

// StepTarget selects the execution target a step runs under.
type StepTarget string

const (
	// TargetHost runs the step in the worker's own process and
	// filesystem namespace.
	TargetHost StepTarget = "host"
	// TargetContainer runs the step inside one of the job's running
	// containers.
	TargetContainer StepTarget = "container"
)

// ErrInvalidStepTarget is the sentinel wrapped by InvalidStepTargetError.
var ErrInvalidStepTarget = errors.New("invalid step target")

// InvalidStepTargetError reports a step target outside the known set.
type InvalidStepTargetError struct {
	Value StepTarget
}

func (e *InvalidStepTargetError) Error() string {
	return fmt.Sprintf("invalid step target %q (valid: %q, %q)", string(e.Value), TargetHost, TargetContainer)
}

func (e *InvalidStepTargetError) Unwrap() error {
	return ErrInvalidStepTarget
}

// Validate checks that the target is one of the known values.
func (t StepTarget) Validate() error {
	switch t {
	case TargetHost, TargetContainer:
		return nil
	default:
		return &InvalidStepTargetError{Value: t}
	}
}

func (t StepTarget) String() string {
	return string(t)
}

// ContainerResource is a running container the job's container-target
// steps execute inside.
type ContainerResource struct {
	// Name is the logical name steps reference via their Container field.
	Name string `json:"name" yaml:"name"`
	// Container is the engine-level container name or id to exec into.
	Container string `json:"container" yaml:"container"`
	// Image records the container's image. Informational.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	// Mounts lists the container's volume mounts in
	// "host:container[:ro]" form; they feed host-to-container path
	// translation.
	Mounts []string `json:"mounts,omitempty" yaml:"mounts,omitempty"`
	// WorkDir is the in-container working directory for steps that do
	// not set their own. Optional.
	WorkDir string `json:"workDir,omitempty" yaml:"workDir,omitempty"`
	// User is the uid or uid:gid step execs run as. Optional.
	User string `json:"user,omitempty" yaml:"user,omitempty"`
}

// Step is one unit of work: a command line plus the target it runs
// under and the task-scope configuration delivered to it.
type Step struct {
	// Name identifies the step in output and --step filters.
	Name string `json:"name" yaml:"name"`
	// Command is the shell command line the step executes.
	Command string `json:"command" yaml:"command"`
	// Target selects host or container execution. Defaults to host.
	Target StepTarget `json:"target,omitempty" yaml:"target,omitempty"`
	// Container names the job container a container-target step runs
	// in. Required when Target is "container".
	Container string `json:"container,omitempty" yaml:"container,omitempty"`
	// WorkingDirectory is where the command starts. Optional.
	WorkingDirectory string `json:"workingDirectory,omitempty" yaml:"workingDirectory,omitempty"`
	// Inputs is the step's task-declared key/value configuration.
	Inputs map[string]string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// TaskVariables are variables scoped to this step rather than the job.
	TaskVariables map[string]VariableValue `json:"taskVariables,omitempty" yaml:"taskVariables,omitempty"`
}

// TaskVariableStore builds the step's task-scope variable store.
func (s *Step) TaskVariableStore() *VariableStore {
	return NewVariableStoreFrom(s.TaskVariables)
}

// Job is one unit of delivered work: the resources every step shares
// plus the ordered step list.
type Job struct {
	// Name labels the job in output. Optional.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Endpoints are the job's service connections.
	Endpoints []ServiceEndpoint `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	// SecureFiles are the job's ticketed secret-file references.
	SecureFiles []SecureFile `json:"secureFiles,omitempty" yaml:"secureFiles,omitempty"`
	// Variables is the job-scope variable set.
	Variables map[string]VariableValue `json:"variables,omitempty" yaml:"variables,omitempty"`
	// PrependPath lists directories steps want ahead of PATH, in
	// declaration order; later entries end up earlier in the final PATH.
	PrependPath []string `json:"prependPath,omitempty" yaml:"prependPath,omitempty"`
	// Containers are the running containers container-target steps use.
	Containers []ContainerResource `json:"containers,omitempty" yaml:"containers,omitempty"`
	// Steps is the ordered work list. At least one is required.
	Steps []Step `json:"steps" yaml:"steps"`
}

// JobVariables builds the job-scope variable store.
func (j *Job) JobVariables() *VariableStore {
	return NewVariableStoreFrom(j.Variables)
}

// ContainerByName resolves a step's Container reference.
func (j *Job) ContainerByName(name string) (*ContainerResource, bool) {
	for i := range j.Containers {
		if j.Containers[i].Name == name {
			return &j.Containers[i], true
		}
	}
	return nil, false
}

// Step returns the step with the given name.
func (j *Job) Step(name string) (*Step, bool) {
	for i := range j.Steps {
		if j.Steps[i].Name == name {
			return &j.Steps[i], true
		}
	}
	return nil, false
}

// Validate checks the job's structural invariants: at least one step,
// named steps with commands, known targets, and container references
// that resolve. Called by the loader after decoding.
func (j *Job) Validate() error {
	if len(j.Steps) == 0 {
		return errors.New("job has no steps")
	}
	for i := range j.Steps {
		step := &j.Steps[i]
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if step.Command == "" {
			return fmt.Errorf("steps[%d] (%s): command is required", i, step.Name)
		}
		if err := step.Target.Validate(); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Name, err)
		}
		if step.Target == TargetContainer {
			if step.Container == "" {
				return fmt.Errorf("steps[%d] (%s): container-target step names no container", i, step.Name)
			}
			if _, ok := j.ContainerByName(step.Container); !ok {
				return fmt.Errorf("steps[%d] (%s): unknown container %q", i, step.Name, step.Container)
			}
		}
	}
	for i := range j.Containers {
		c := &j.Containers[i]
		if c.Name == "" {
			return fmt.Errorf("containers[%d]: name is required", i)
		}
		if c.Container == "" {
			return fmt.Errorf("containers[%d] (%s): container name or id is required", i, c.Name)
		}
	}
	return nil
}

// normalize fills defaults the wire format leaves implicit.
func (j *Job) normalize() {
	for i := range j.Steps {
		if j.Steps[i].Target == "" {
			j.Steps[i].Target = TargetHost
		}
	}
}
