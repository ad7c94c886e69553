// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
	"github.com/jandreu1/azure-pipelines-agent/pkg/platform"
)

// embeddedConfig switches host steps to the embedded interpreter so
// runner tests behave the same on every platform.
func embeddedConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Shell.Mode = config.ShellEmbedded
	return cfg
}

func TestRunnerRunJob(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{
		{Name: "first", Command: "echo one"},
		{Name: "second", Command: "echo two"},
	}}

	var stdout bytes.Buffer
	r := NewRunner(embeddedConfig(), WithStdout(&stdout))

	result, err := r.RunJob(context.Background(), job)
	if err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(result.Steps))
	}
	if result.Steps[0].Step != "first" || result.Steps[1].Step != "second" {
		t.Errorf("step order = %v", result.Steps)
	}
	if !result.Succeeded() {
		t.Errorf("Succeeded() = false for a clean run: %+v", result)
	}
	if got := stdout.String(); got != "one\ntwo\n" {
		t.Errorf("stdout = %q, want %q", got, "one\ntwo\n")
	}
}

func TestRunnerStopsOnFailure(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{
		{Name: "fail", Command: "exit 2"},
		{Name: "after", Command: "echo nope"},
	}}

	var stdout bytes.Buffer
	r := NewRunner(embeddedConfig(), WithStdout(&stdout))

	result, err := r.RunJob(context.Background(), job)
	if err != nil {
		t.Fatalf("RunJob() error = %v, a nonzero exit is not an infrastructure error", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want the run to stop after the failing step", len(result.Steps))
	}
	if got := result.Steps[0].Result.ExitCode; got != 2 {
		t.Errorf("ExitCode = %d, want 2", got)
	}
	if result.Succeeded() {
		t.Error("Succeeded() = true after a failing step")
	}
	if strings.Contains(stdout.String(), "nope") {
		t.Error("step after the failure still ran")
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{
		{Name: "spin", Command: "while :; do :; done"},
		{Name: "after", Command: "echo nope"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()

	var stdout bytes.Buffer
	r := NewRunner(embeddedConfig(), WithStdout(&stdout))

	result, err := r.RunJob(ctx, job)
	if err != nil {
		t.Fatalf("RunJob() error = %v, cancellation is not an infrastructure error", err)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want the run to stop at the canceled step", len(result.Steps))
	}
	if !result.Steps[0].Result.Canceled {
		t.Errorf("Result = %+v, want Canceled", result.Steps[0].Result)
	}
	if result.Succeeded() {
		t.Error("Succeeded() = true after a canceled step")
	}
	if strings.Contains(stdout.String(), "nope") {
		t.Error("step after the cancellation still ran")
	}
}

func TestRunnerComposesStepEnvironment(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{
		Variables: map[string]pipeline.VariableValue{
			"build.id": {Value: "42"},
		},
		Steps: []pipeline.Step{{
			Name:    "deploy",
			Command: `printf '%s-%s' "$INPUT_TARGET" "$BUILD_ID"`,
			Inputs:  map[string]string{"target": "staging"},
		}},
	}

	var stdout bytes.Buffer
	r := NewRunner(embeddedConfig(), WithStdout(&stdout))

	result, err := r.RunJob(context.Background(), job)
	if err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("job failed: %+v", result.Steps)
	}
	if got := stdout.String(); got != "staging-42" {
		t.Errorf("stdout = %q, want the composed inputs and variables", got)
	}
}

func TestRunnerRunStep(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{
		{Name: "first", Command: "echo one"},
		{Name: "second", Command: "echo two"},
	}}

	var stdout bytes.Buffer
	r := NewRunner(embeddedConfig(), WithStdout(&stdout))

	res, err := r.RunStep(context.Background(), job, "second")
	if err != nil {
		t.Fatalf("RunStep() error = %v", err)
	}
	if !res.Success() {
		t.Fatalf("RunStep() = %+v, want success", res)
	}
	if got := stdout.String(); got != "two\n" {
		t.Errorf("stdout = %q, want only the named step's output", got)
	}
}

func TestRunnerRunStepUnknown(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{{Name: "only", Command: "echo hi"}}}
	r := NewRunner(embeddedConfig())

	if _, err := r.RunStep(context.Background(), job, "missing"); err == nil {
		t.Fatal("RunStep() with an unknown step returned nil error")
	} else if !strings.Contains(err.Error(), "find the requested step") {
		t.Errorf("error = %q, want it to name the lookup failure", err)
	}
}

func TestRunnerContainerStep(t *testing.T) {
	if platform.IsWindows() {
		t.Skip("the fake engine relies on a posix shell")
	}
	t.Parallel()

	job := &pipeline.Job{
		Containers: []pipeline.ContainerResource{{
			Name:      "builder",
			Container: "ci-builder-1",
			WorkDir:   "/agent/work",
			User:      "builder",
		}},
		Steps: []pipeline.Step{{
			Name:      "in-container",
			Command:   "echo built",
			Target:    pipeline.TargetContainer,
			Container: "builder",
		}},
	}

	engine := &fakeEngine{running: true}
	var stdout bytes.Buffer
	r := NewRunner(nil, WithStdout(&stdout), WithEngine(engine))

	result, err := r.RunJob(context.Background(), job)
	if err != nil {
		t.Fatalf("RunJob() error = %v", err)
	}
	if !result.Succeeded() {
		t.Fatalf("job failed: %+v", result.Steps)
	}
	if engine.execSpec == nil {
		t.Fatal("engine.Exec never called")
	}
	if got := engine.execSpec.Container; got != "ci-builder-1" {
		t.Errorf("exec container = %q, want the engine-level name", got)
	}
	if got := engine.execSpec.WorkDir; got != "/agent/work" {
		t.Errorf("exec workdir = %q, want the container resource's workDir", got)
	}
	if got := engine.execSpec.User; got != "builder" {
		t.Errorf("exec user = %q, want the container resource's user", got)
	}
	if got := stdout.String(); got != "built\n" {
		t.Errorf("stdout = %q, want %q", got, "built\n")
	}
}

func TestRunnerContainerStepUnknownContainer(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{{
		Name:      "bad",
		Command:   "echo hi",
		Target:    pipeline.TargetContainer,
		Container: "ghost",
	}}}

	r := NewRunner(nil, WithEngine(&fakeEngine{running: true}))

	result, err := r.RunJob(context.Background(), job)
	if err == nil {
		t.Fatal("RunJob() with an unresolvable container returned nil error")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error = %q, want it to name the missing container", err)
	}
	if len(result.Steps) != 1 || result.Steps[0].Result.Error == nil {
		t.Errorf("Steps = %+v, want the failed step recorded", result.Steps)
	}
}

func TestComposeStepEnvironmentHost(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{
		Variables: map[string]pipeline.VariableValue{
			"system.debug": {Value: "true"},
			"api.key":      {Value: "k-123", IsSecret: true},
		},
		PrependPath: []string{"/agent/tools"},
		Steps: []pipeline.Step{{
			Name:    "build",
			Command: "make",
			Inputs:  map[string]string{"script": "make all"},
		}},
	}

	env, warnings, err := NewRunner(nil).ComposeStepEnvironment(context.Background(), job, "build", VariableOptions{})
	if err != nil {
		t.Fatalf("ComposeStepEnvironment() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}

	wantEnv(t, env, "INPUT_SCRIPT", "make all")
	wantEnv(t, env, "SYSTEM_DEBUG", "true")
	wantEnv(t, env, "SECRET_API_KEY", "k-123")
	if got := env[PathKey]; !strings.HasPrefix(got, "/agent/tools"+platform.PathListSeparator()) {
		t.Errorf("PATH = %q, want the prepend segment first", got)
	}
}

func TestComposeStepEnvironmentContainer(t *testing.T) {
	if platform.IsWindows() {
		t.Skip("mount specs in this test use unix paths")
	}
	t.Parallel()

	job := &pipeline.Job{
		PrependPath: []string{"/work/tools"},
		Containers: []pipeline.ContainerResource{{
			Name:      "builder",
			Container: "ci-builder-1",
			Mounts:    []string{"/work:/agent/work"},
		}},
		Steps: []pipeline.Step{{
			Name:      "build",
			Command:   "make",
			Target:    pipeline.TargetContainer,
			Container: "builder",
		}},
	}

	// No engine: previewing must not require one.
	env, _, err := NewRunner(nil).ComposeStepEnvironment(context.Background(), job, "build", VariableOptions{})
	if err != nil {
		t.Fatalf("ComposeStepEnvironment() error = %v", err)
	}
	wantEnv(t, env, PathKey, "/agent/work/tools")
}

func TestComposeStepEnvironmentUnknownStep(t *testing.T) {
	t.Parallel()

	job := &pipeline.Job{Steps: []pipeline.Step{{Name: "only", Command: "echo hi"}}}
	if _, _, err := NewRunner(nil).ComposeStepEnvironment(context.Background(), job, "missing", VariableOptions{}); err == nil {
		t.Error("ComposeStepEnvironment() with an unknown step returned nil error")
	}
}

func TestJobResultSucceeded(t *testing.T) {
	t.Parallel()

	empty := &JobResult{}
	if empty.Succeeded() {
		t.Error("Succeeded() = true for a run with no steps")
	}

	mixed := &JobResult{Steps: []StepResult{
		{Step: "ok", Result: &Result{ExitCode: 0}},
		{Step: "bad", Result: &Result{ExitCode: 1}},
	}}
	if mixed.Succeeded() {
		t.Error("Succeeded() = true with a failing step")
	}
}

func TestRunnerHostInvokerSelection(t *testing.T) {
	t.Parallel()

	systemCfg := config.DefaultConfig()

	tests := []struct {
		name string
		cfg  *config.Config
		opts []RunnerOption
		want string
	}{
		{name: "nil config defaults to the system shell", cfg: nil, want: "process"},
		{name: "system mode picks the process invoker", cfg: systemCfg, want: "process"},
		{name: "embedded mode picks the embedded invoker", cfg: embeddedConfig(), want: "embedded"},
		{
			name: "embedded option overrides system mode",
			cfg:  systemCfg,
			opts: []RunnerOption{WithEmbeddedShell(true)},
			want: "embedded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRunner(tt.cfg, tt.opts...)
			if got := r.hostInvoker().Name(); got != tt.want {
				t.Errorf("hostInvoker().Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
