// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const yamlJob = `
name: nightly
endpoints:
  - id: 11111111-1111-1111-1111-111111111111
    name: github
    url: https://example.com
    authorization:
      scheme: OAuth
      parameters:
        AccessToken: tok
variables:
  system.debug:
    value: "true"
  api.key:
    value: hunter2
    isSecret: true
prependPath:
  - /opt/tools/bin
containers:
  - name: build
    container: job_build_1
    mounts:
      - /home/agent/work:/__w
steps:
  - name: compile
    command: make all
  - name: compile-in-container
    command: make all
    target: container
    container: build
`

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	job, err := Load([]byte(yamlJob), "job.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if job.Name != "nightly" {
		t.Errorf("Name = %q, want %q", job.Name, "nightly")
	}
	if len(job.Endpoints) != 1 || job.Endpoints[0].Authorization.Parameters["AccessToken"] != "tok" {
		t.Errorf("endpoint authorization not decoded: %+v", job.Endpoints)
	}

	vars := job.JobVariables()
	if !vars.IsSecret("api.key") {
		t.Error("api.key should be secret")
	}
	if vars.IsSecret("system.debug") {
		t.Error("system.debug should be public")
	}

	if got := job.Steps[0].Target; got != TargetHost {
		t.Errorf("step without target defaulted to %q, want %q", got, TargetHost)
	}
	if got := job.Steps[1].Target; got != TargetContainer {
		t.Errorf("container step target = %q, want %q", got, TargetContainer)
	}
}

func TestLoad_JSON(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"steps": [{"name": "hello", "command": "echo hi"}]
	}`)
	job, err := Load(data, "job.json")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(job.Steps) != 1 || job.Steps[0].Command != "echo hi" {
		t.Errorf("Steps = %+v, want one echo step", job.Steps)
	}
}

func TestLoad_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		filename string
		wantIn   string
	}{
		{
			name:     "no steps",
			data:     `name: empty`,
			filename: "job.yaml",
			wantIn:   "no steps",
		},
		{
			name:     "step without command",
			data:     "steps:\n  - name: broken",
			filename: "job.yaml",
			wantIn:   "command is required",
		},
		{
			name:     "unknown target",
			data:     "steps:\n  - name: s\n    command: true\n    target: vm",
			filename: "job.yaml",
			wantIn:   "invalid step target",
		},
		{
			name:     "container step without container",
			data:     "steps:\n  - name: s\n    command: true\n    target: container",
			filename: "job.yaml",
			wantIn:   "names no container",
		},
		{
			name:     "container reference does not resolve",
			data:     "steps:\n  - name: s\n    command: true\n    target: container\n    container: ghost",
			filename: "job.yaml",
			wantIn:   `unknown container "ghost"`,
		},
		{
			name:     "unknown field rejected",
			data:     "steps:\n  - name: s\n    command: true\n    retries: 3",
			filename: "job.yaml",
			wantIn:   "retries",
		},
		{
			name:     "json unknown field rejected",
			data:     `{"steps": [{"name": "s", "command": "true"}], "bogus": 1}`,
			filename: "job.json",
			wantIn:   "bogus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tt.data), tt.filename)
			if err == nil {
				t.Fatal("Load() error = nil, want rejection")
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantIn)
			}
		})
	}
}

func TestLoad_InvalidStepTargetUnwraps(t *testing.T) {
	t.Parallel()

	_, err := Load([]byte("steps:\n  - name: s\n    command: true\n    target: vm"), "job.yaml")
	if !errors.Is(err, ErrInvalidStepTarget) {
		t.Errorf("errors.Is(err, ErrInvalidStepTarget) = false, err = %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("prefers yaml over json", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		for _, name := range []string{"job.json", "job.yaml"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		got, err := Find(dir)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if filepath.Base(got) != "job.yaml" {
			t.Errorf("Find() = %q, want job.yaml first", got)
		}
	})

	t.Run("reports the sentinel when nothing matches", func(t *testing.T) {
		t.Parallel()
		_, err := Find(t.TempDir())
		if !errors.Is(err, ErrNoJobFile) {
			t.Errorf("Find() error = %v, want ErrNoJobFile", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(path, []byte(yamlJob), 0o644); err != nil {
		t.Fatal(err)
	}

	job, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(job.Steps) != 2 {
		t.Errorf("Steps count = %d, want 2", len(job.Steps))
	}
}
