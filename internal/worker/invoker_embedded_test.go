// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
)

// The embedded interpreter needs no shell installed, so these tests run
// on every platform.

func TestEmbeddedInvokerEnvironment(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	res := NewEmbeddedInvoker().Invoke(newTestContext(nil), InvocationSpec{
		Command:     `printf '%s' "$STEP_GREETING"`,
		Environment: map[string]string{"STEP_GREETING": "hello"},
		Stdout:      &stdout,
	})

	if !res.Success() {
		t.Fatalf("Invoke() = %+v, want success", res)
	}
	if got := stdout.String(); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestEmbeddedInvokerStreams(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	res := NewEmbeddedInvoker().Invoke(newTestContext(nil), InvocationSpec{
		Command: `echo out; echo err 1>&2`,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})

	if !res.Success() {
		t.Fatalf("Invoke() = %+v, want success", res)
	}
	if got := stdout.String(); got != "out\n" {
		t.Errorf("stdout = %q, want %q", got, "out\n")
	}
	if got := stderr.String(); got != "err\n" {
		t.Errorf("stderr = %q, want %q", got, "err\n")
	}
}

func TestEmbeddedInvokerWorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res := NewEmbeddedInvoker().Invoke(newTestContext(nil), InvocationSpec{
		Command:          `echo ok > marker.txt`,
		WorkingDirectory: dir,
	})

	if !res.Success() {
		t.Fatalf("Invoke() = %+v, want success", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
		t.Errorf("marker file not written in the working directory: %v", err)
	}
}

func TestEmbeddedInvokerExitCode(t *testing.T) {
	t.Parallel()

	res := NewEmbeddedInvoker().Invoke(newTestContext(nil), InvocationSpec{Command: "exit 3"})

	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Error != nil {
		t.Errorf("Error = %v, want nil for a step that ran and failed", res.Error)
	}
}

func TestEmbeddedInvokerParseError(t *testing.T) {
	t.Parallel()

	res := NewEmbeddedInvoker().Invoke(newTestContext(nil), InvocationSpec{Command: `echo "unterminated`})

	if res.Error == nil {
		t.Fatal("Invoke() with a malformed command returned nil Error")
	}
	if !strings.Contains(res.Error.Error(), "parse the step command") {
		t.Errorf("Error = %q, want it to name the parse failure", res.Error)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}

func TestEmbeddedInvokerCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ec := NewExecutionContext(ctx, pipeline.NewVariableStore(), nil)

	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()

	// Pure-builtin busy loop; the interpreter checks the context between
	// statements.
	res := NewEmbeddedInvoker().Invoke(ec, InvocationSpec{Command: `while :; do :; done`})

	if !res.Canceled {
		t.Fatalf("Invoke() = %+v, want Canceled", res)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}
}
