// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/internal/container"
	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
)

type (
	// Runner executes a job's steps in order, composing each step's
	// environment before dispatching it to an invoker.
	Runner struct {
		cfg      *config.Config
		stdout   io.Writer
		stderr   io.Writer
		usePTY   bool
		embedded bool
		engine   container.Engine
	}

	// RunnerOption configures a Runner.
	RunnerOption func(*Runner)

	// StepResult pairs a step's name with its outcome.
	StepResult struct {
		Step   string
		Result *Result
	}

	// JobResult aggregates one job run: the per-step outcomes in
	// execution order and the warnings the run recorded.
	JobResult struct {
		Steps    []StepResult
		Warnings []string
	}
)

// WithStdout routes step stdout to w instead of the worker's own.
func WithStdout(w io.Writer) RunnerOption {
	return func(r *Runner) { r.stdout = w }
}

// WithStderr routes step stderr to w instead of the worker's own.
func WithStderr(w io.Writer) RunnerOption {
	return func(r *Runner) { r.stderr = w }
}

// WithPTY runs host steps under a pseudo-terminal.
func WithPTY(enabled bool) RunnerOption {
	return func(r *Runner) { r.usePTY = enabled }
}

// WithEmbeddedShell runs host steps in the embedded POSIX interpreter
// regardless of the configured shell mode.
func WithEmbeddedShell(enabled bool) RunnerOption {
	return func(r *Runner) { r.embedded = enabled }
}

// WithEngine pins the container engine instead of resolving it from
// the configuration on first use.
func WithEngine(engine container.Engine) RunnerOption {
	return func(r *Runner) { r.engine = engine }
}

// NewRunner builds a job runner. cfg may be nil; defaults apply.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Succeeded reports whether every step ran and exited zero.
func (jr *JobResult) Succeeded() bool {
	for i := range jr.Steps {
		if !jr.Steps[i].Result.Success() {
			return false
		}
	}
	return len(jr.Steps) > 0
}

// RunJob executes the job's steps in order. A failing or canceled step
// stops the run; the steps after it never start. The returned JobResult
// always covers the steps that did run, even when err is non-nil.
func (r *Runner) RunJob(ctx context.Context, job *pipeline.Job) (*JobResult, error) {
	ec := NewExecutionContext(ctx, job.JobVariables(), r.cfg,
		WithPrependPath(job.PrependPath),
		WithWarningSink(func(msg string) { slog.Warn(msg) }),
	)

	result := &JobResult{}
	var runErr error

	for i := range job.Steps {
		step := &job.Steps[i]
		res := r.runStep(ec, job, step)
		result.Steps = append(result.Steps, StepResult{Step: step.Name, Result: res})

		if res.Error != nil {
			runErr = issue.WrapResource(res.Error, "run step", step.Name)
			break
		}
		if res.Canceled || res.ExitCode != 0 {
			break
		}
	}

	result.Warnings = ec.Warnings()
	return result, runErr
}

// RunStep executes a single named step of the job, composing the same
// environment it would get in a full run.
func (r *Runner) RunStep(ctx context.Context, job *pipeline.Job, stepName string) (*Result, error) {
	step, ok := job.Step(stepName)
	if !ok {
		return nil, issue.NewContext().
			Operation("find the requested step").
			Resource(stepName).
			Suggest("Run 'agent-worker env' to list the job's steps").
			Err()
	}
	ec := NewExecutionContext(ctx, job.JobVariables(), r.cfg,
		WithPrependPath(job.PrependPath),
		WithWarningSink(func(msg string) { slog.Warn(msg) }),
	)
	res := r.runStep(ec, job, step)
	if res.Error != nil {
		return res, issue.WrapResource(res.Error, "run step", step.Name)
	}
	return res, nil
}

// ComposeStepEnvironment builds the environment a step would receive
// without invoking it. Container targets report the PATH prepend
// segment under PathKey so the preview shows what the step sees.
func (r *Runner) ComposeStepEnvironment(ctx context.Context, job *pipeline.Job, stepName string, opts VariableOptions) (map[string]string, []string, error) {
	step, ok := job.Step(stepName)
	if !ok {
		return nil, nil, issue.NewContext().
			Operation("find the requested step").
			Resource(stepName).
			Err()
	}

	ec := NewExecutionContext(ctx, job.JobVariables(), r.cfg, WithPrependPath(job.PrependPath))

	host, _, err := r.stepTarget(ec, job, step, false)
	if err != nil {
		return nil, nil, err
	}

	env := make(map[string]string)
	composer, err := NewComposer(ComposerConfig{
		Context:       ec,
		StepHost:      host,
		Environment:   env,
		TaskVariables: step.TaskVariableStore(),
		Endpoints:     job.Endpoints,
		SecureFiles:   job.SecureFiles,
		Inputs:        step.Inputs,
	})
	if err != nil {
		return nil, nil, err
	}
	composer.Compose(opts)

	if containerHost, ok := host.(*ContainerStepHost); ok && containerHost.PrependPath != "" {
		env[PathKey] = containerHost.PrependPath
	}
	return env, ec.Warnings(), nil
}

// runStep composes and invokes one step.
func (r *Runner) runStep(ec *ExecutionContext, job *pipeline.Job, step *pipeline.Step) *Result {
	host, invoker, err := r.stepTarget(ec, job, step, true)
	if err != nil {
		return &Result{ExitCode: -1, Error: err}
	}

	env := make(map[string]string)
	composer, err := NewComposer(ComposerConfig{
		Context:       ec,
		StepHost:      host,
		Environment:   env,
		TaskVariables: step.TaskVariableStore(),
		Endpoints:     job.Endpoints,
		SecureFiles:   job.SecureFiles,
		Inputs:        step.Inputs,
	})
	if err != nil {
		return &Result{ExitCode: -1, Error: err}
	}
	composer.Compose(VariableOptions{})

	slog.Info("running step", "step", step.Name, "target", host.Name(), "invoker", invoker.Name())
	slog.Debug("composed step environment", "step", step.Name, "entries", len(env))

	start := time.Now()
	res := invoker.Invoke(ec, InvocationSpec{
		Command:          step.Command,
		WorkingDirectory: step.WorkingDirectory,
		Environment:      env,
		Stdout:           r.stdout,
		Stderr:           r.stderr,
		UsePTY:           r.usePTY,
	})
	slog.Info("step finished",
		"step", step.Name,
		"exit_code", res.ExitCode,
		"canceled", res.Canceled,
		"duration", time.Since(start).Round(time.Millisecond))
	return res
}

// stepTarget builds the step host for a step and, when wantInvoker is
// set, the invoker that drives it.
func (r *Runner) stepTarget(ec *ExecutionContext, job *pipeline.Job, step *pipeline.Step, wantInvoker bool) (StepHost, Invoker, error) {
	if step.Target != pipeline.TargetContainer {
		if !wantInvoker {
			return HostStepHost{}, nil, nil
		}
		return HostStepHost{}, r.hostInvoker(), nil
	}

	resource, ok := job.ContainerByName(step.Container)
	if !ok {
		// The loader validates references, so this only fires for jobs
		// assembled in code.
		return nil, nil, issue.WrapResource(fmt.Errorf("unknown container %q", step.Container), "resolve the step's container", step.Name)
	}
	mounts, err := container.NewMountTable(resource.Mounts)
	if err != nil {
		return nil, nil, issue.WrapResource(err, "parse the container's mounts", resource.Name)
	}
	host := &ContainerStepHost{
		ContainerName:    resource.Container,
		Mounts:           mounts,
		WorkingDirectory: resource.WorkDir,
		User:             resource.User,
	}
	if !wantInvoker {
		return host, nil, nil
	}

	engine, err := r.resolveEngine()
	if err != nil {
		return nil, nil, err
	}
	invoker, err := NewContainerInvoker(engine, host)
	if err != nil {
		return nil, nil, err
	}
	return host, invoker, nil
}

// hostInvoker picks the invoker for host-target steps from the shell
// mode.
func (r *Runner) hostInvoker() Invoker {
	mode := config.ShellSystem
	if r.cfg != nil {
		mode = r.cfg.Shell.Mode
	}
	if r.embedded || mode == config.ShellEmbedded {
		return NewEmbeddedInvoker()
	}
	return NewProcessInvoker()
}

// resolveEngine picks the container engine on first use and caches it
// for the rest of the job.
func (r *Runner) resolveEngine() (container.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	engineCfg := config.ContainerEngineAuto
	if r.cfg != nil {
		engineCfg = r.cfg.ContainerEngine
	}

	var (
		engine container.Engine
		err    error
	)
	switch engineCfg {
	case config.ContainerEngineDocker:
		engine, err = container.NewEngine(container.EngineDocker)
	case config.ContainerEnginePodman:
		engine, err = container.NewEngine(container.EnginePodman)
	default:
		engine, err = container.AutoDetect()
	}
	if err != nil {
		return nil, issue.NewContext().
			Operation("resolve a container engine").
			Suggest("Install docker or podman, or set container_engine in the worker configuration").
			Cause(err).
			Err()
	}
	if !engine.Available() {
		return nil, issue.NewContext().
			Operation("locate the configured container engine").
			Resource(engine.Name()).
			Suggest(fmt.Sprintf("Install %s or set container_engine to \"auto\"", engine.Name())).
			Cause(fmt.Errorf("not found on PATH")).
			Err()
	}

	r.engine = engine
	return engine, nil
}
