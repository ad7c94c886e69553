// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "load job definition"},
			want: "failed to load job definition",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "load job definition", Resource: "job.yaml"},
			want: "failed to load job definition: job.yaml",
		},
		{
			name: "operation, resource and cause",
			err: &ActionableError{
				Operation: "read settings",
				Resource:  ".agent.toml",
				Cause:     errors.New("permission denied"),
			},
			want: "failed to read settings: .agent.toml: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := os.ErrNotExist
	err := WrapResource(fmt.Errorf("stat: %w", cause), "load job definition", "job.yaml")

	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is(err, os.ErrNotExist) = false, want true through the wrap chain")
	}

	var ae *ActionableError
	if !errors.As(error(err), &ae) {
		t.Fatal("errors.As failed to recover *ActionableError")
	}
	if ae.Resource != "job.yaml" {
		t.Errorf("Resource = %q, want %q", ae.Resource, "job.yaml")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	t.Parallel()

	if got := Wrap(nil, "anything"); got != nil {
		t.Errorf("Wrap(nil, ...) = %v, want nil", got)
	}
	if got := WrapResource(nil, "anything", "thing"); got != nil {
		t.Errorf("WrapResource(nil, ...) = %v, want nil", got)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewContext().
		Operation("detect container engine").
		Suggest("Install Docker or Podman").
		Suggest("Pin the engine in the worker config").
		Cause(fmt.Errorf("probe docker: %w", errors.New("executable not found"))).
		Build()
	if err == nil {
		t.Fatal("Build() = nil, want error")
	}

	t.Run("terse form lists suggestions only", func(t *testing.T) {
		t.Parallel()
		got := err.Format(false)
		if !strings.Contains(got, "• Install Docker or Podman") {
			t.Errorf("Format(false) = %q, want bulleted suggestion", got)
		}
		if strings.Contains(got, "Cause chain") {
			t.Errorf("Format(false) = %q, want no cause chain", got)
		}
	})

	t.Run("verbose form numbers the cause chain", func(t *testing.T) {
		t.Parallel()
		got := err.Format(true)
		if !strings.Contains(got, "Cause chain:") {
			t.Errorf("Format(true) = %q, want cause chain header", got)
		}
		if !strings.Contains(got, "2. executable not found") {
			t.Errorf("Format(true) = %q, want numbered inner cause", got)
		}
	})
}

func TestContext_RequiresOperation(t *testing.T) {
	t.Parallel()

	if err := NewContext().Resource("job.yaml").Err(); err != nil {
		t.Errorf("Err() without operation = %v, want nil", err)
	}
}

func TestContext_BuildCopies(t *testing.T) {
	t.Parallel()

	c := NewContext().Operation("load job definition")
	first := c.Build()
	c.Suggest("added later")

	if len(first.Suggestions) != 0 {
		t.Errorf("earlier Build() gained %d suggestions from later mutation", len(first.Suggestions))
	}
}
