// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies one failure class in the catalog.
type Id int

const (
	JobFileNotFoundId Id = iota + 1
	JobFileInvalidId
	ConfigInvalidId
	SettingsMissingId
	ShellNotFoundId
	ContainerEngineNotFoundId
	ContainerNotRunningId
	StepNotFoundId
)

// Entry is one catalog item: the markdown shown when the CLI escalates
// a failure class beyond its one-line error.
type Entry struct {
	id   Id
	body string
}

func (e *Entry) Id() Id {
	return e.id
}

func (e *Entry) Markdown() string {
	return e.body
}

// Render returns the entry's markdown styled for the terminal.
func (e *Entry) Render(stylePath string) (string, error) {
	return render(e.body, stylePath)
}

// render is a seam for tests; glamour's auto-styling probes the
// terminal, which test output capture does not survive.
var render = glamour.Render

var catalog = map[Id]*Entry{
	JobFileNotFoundId: {
		id: JobFileNotFoundId,
		body: `
# No job definition found

The worker looked for a job file but none exists in the expected places.

## Search order
1. The path given on the command line
2. ` + "`job.yaml`" + `, ` + "`job.yml`" + `, ` + "`job.json`" + ` in the working directory

## Things you can try
- Pass the file explicitly:
~~~
$ agent-worker run ./ci/job.yaml
~~~
- Inspect what a job file looks like:
~~~
$ agent-worker docs
~~~`,
	},

	JobFileInvalidId: {
		id: JobFileInvalidId,
		body: `
# Job definition failed to parse

The job file exists but its contents are not a valid job.

## Common causes
- YAML/JSON syntax errors (the message above names the line)
- A step without a ` + "`command`" + `
- A container step without a ` + "`container`" + ` name

## Things you can try
- Compose the environment without running anything to re-check:
~~~
$ agent-worker env ./job.yaml
~~~`,
	},

	ConfigInvalidId: {
		id: ConfigInvalidId,
		body: `
# Worker configuration rejected

The configuration file failed schema validation.

## Configuration file locations
- Linux: ~/.config/agent-worker/config.cue
- macOS: ~/Library/Application Support/agent-worker/config.cue
- Windows: %APPDATA%\agent-worker\config.cue

## Things you can try
- The message above names the failing field and its path
- Remove the file to fall back to defaults
- Override single values with AGENT_WORKER_* environment variables`,
	},

	SettingsMissingId: {
		id: SettingsMissingId,
		body: `
# Worker is not configured

No agent settings file was found, so the worker has no identity or
work folder.

## Things you can try
- Create the settings file:
~~~
$ agent-worker configure --name my-agent --pool Default
~~~`,
	},

	ShellNotFoundId: {
		id: ShellNotFoundId,
		body: `
# No shell available for host steps

Host-target steps run through a shell, and none was found.

## Shells the worker looks for
- Linux/macOS: $SHELL, then bash, then sh
- Windows: pwsh, then powershell, then cmd

## Things you can try
- Install a POSIX shell or set the SHELL environment variable
- Run host steps on the embedded interpreter instead, per run
  ('agent-worker run --embedded-shell') or in the worker config:
~~~cue
shell: mode: "embedded"
~~~`,
	},

	ContainerEngineNotFoundId: {
		id: ContainerEngineNotFoundId,
		body: `
# Container engine not found

The job has container-target steps but neither docker nor podman is
available.

## Things you can try
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman: https://podman.io
- Pin the engine in the worker config:
~~~cue
container_engine: "podman"
~~~`,
	},

	ContainerNotRunningId: {
		id: ContainerNotRunningId,
		body: `
# Step container is not running

Container steps execute inside an already-running container, and the
named container was not found.

## Things you can try
- Check the container name in the step's ` + "`container`" + ` field
- List running containers:
~~~
$ docker ps
~~~`,
	},

	StepNotFoundId: {
		id: StepNotFoundId,
		body: `
# Step not found in the job

The name passed to --step does not match any step in the job file.

## Things you can try
- List the job's steps by composing without running:
~~~
$ agent-worker env ./job.yaml
~~~`,
	},
}

// Get returns the catalog entry for id, or nil when the class has no
// long-form explanation.
func Get(id Id) *Entry {
	return catalog[id]
}

// Values returns all catalog entries in id order.
func Values() []*Entry {
	out := maps.Values(catalog)
	slices.SortFunc(out, func(a, b *Entry) int { return int(a.id) - int(b.id) })
	return out
}
