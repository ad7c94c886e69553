// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var docsPlain bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Show the job file and configuration reference",
	Long: `Show the reference documentation for job definition files, the
environment variables composed for each step, and the worker
configuration.

The output is rendered for the terminal. Use --plain to get raw
markdown suitable for piping into a pager or a file.`,
	Args: cobra.NoArgs,
	RunE: runDocs,
}

func init() {
	docsCmd.Flags().BoolVar(&docsPlain, "plain", false, "print raw markdown without terminal rendering")
}

func runDocs(cmd *cobra.Command, args []string) error {
	if docsPlain {
		fmt.Print(referenceDoc)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to raw markdown rather than failing the command.
		fmt.Print(referenceDoc)
		return nil
	}
	out, err := renderer.Render(referenceDoc)
	if err != nil {
		fmt.Print(referenceDoc)
		return nil
	}
	fmt.Print(out)
	return nil
}

const referenceDoc = `# agent-worker reference

## Job files

The worker reads one job definition per run. Without an explicit file
argument it looks for ` + "`job.yaml`" + `, ` + "`job.yml`" + `, or ` + "`job.json`" + ` in the
current directory, in that order. Unknown fields are rejected, so typos
surface as load errors instead of silently ignored configuration.

` + "```yaml" + `
name: nightly-build

endpoints:
  - id: 7f1c5cde-4b3a-4c0e-aa11-fe6e2c0e3a88
    name: build-service
    url: https://dev.example.com/org
    authorization:
      scheme: OAuth
      parameters:
        AccessToken: tok-123
    data:
      project.name: Web App

secureFiles:
  - id: 5a6b7c8d-1e2f-4a5b-8c9d-0e1f2a3b4c5d
    name: signing.pfx
    ticket: rsa-ticket-value

variables:
  build.id:
    value: "42"
  api.key:
    value: hunter2
    isSecret: true

prependPath:
  - /agent/tools
  - /opt/node/bin

containers:
  - name: builder
    container: ci-builder-1
    image: node:20
    mounts:
      - /agent/work:/agent/work

steps:
  - name: compile
    command: make all
    workingDirectory: /agent/work/src
    inputs:
      configuration: Release
  - name: test
    command: make check
    target: container
    container: builder
` + "```" + `

### Job fields

| Field | Description |
|-------|-------------|
| ` + "`name`" + ` | Label for output. Optional. |
| ` + "`endpoints`" + ` | Service connections delivered with the job. |
| ` + "`secureFiles`" + ` | Ticketed secret-file references. |
| ` + "`variables`" + ` | Job-scope variables; each entry has ` + "`value`" + ` and optional ` + "`isSecret`" + `. |
| ` + "`prependPath`" + ` | Directories placed ahead of PATH. Later entries end up earlier. |
| ` + "`containers`" + ` | Running containers that container-target steps exec into. |
| ` + "`steps`" + ` | Ordered work list. At least one step is required. |

### Container fields

| Field | Description |
|-------|-------------|
| ` + "`name`" + ` | Logical name steps reference via ` + "`container`" + `. Required. |
| ` + "`container`" + ` | Engine-level container name or id to exec into. Required. |
| ` + "`image`" + ` | Image the container runs. Informational. |
| ` + "`mounts`" + ` | Volume mounts as ` + "`host:container[:ro]`" + `; they drive path translation. |
| ` + "`workDir`" + ` | In-container working directory for steps without their own. |
| ` + "`user`" + ` | uid or uid:gid the exec runs as. |

### Step fields

| Field | Description |
|-------|-------------|
| ` + "`name`" + ` | Step identifier, also used by ` + "`--step`" + `. Required. |
| ` + "`command`" + ` | Shell command line. Required. |
| ` + "`target`" + ` | ` + "`host`" + ` (default) or ` + "`container`" + `. |
| ` + "`container`" + ` | Job container name. Required when target is ` + "`container`" + `. |
| ` + "`workingDirectory`" + ` | Where the command starts. |
| ` + "`inputs`" + ` | Key/value configuration published as ` + "`INPUT_*`" + `. |
| ` + "`taskVariables`" + ` | Variables scoped to this step only. |

## Composed environment

Before a step runs, the worker composes its process environment from
the job resources. Names are formatted by replacing ` + "`.`" + ` and spaces
with ` + "`_`" + ` and uppercasing, so ` + "`project.name`" + ` becomes ` + "`PROJECT_NAME`" + `.
Endpoint keys and secure file ids pass through verbatim.

| Variable | Content |
|----------|---------|
| ` + "`ENDPOINT_URL_<key>`" + ` | Endpoint URL. |
| ` + "`ENDPOINT_AUTH_<key>`" + ` | Authorization as JSON, or empty when absent. |
| ` + "`ENDPOINT_AUTH_SCHEME_<key>`" + ` | Authorization scheme name. |
| ` + "`ENDPOINT_AUTH_PARAMETER_<key>_<NAME>`" + ` | One authorization parameter. |
| ` + "`ENDPOINT_DATA_<key>`" + ` | Data map as JSON. Endpoints with an id only. |
| ` + "`ENDPOINT_DATA_<key>_<NAME>`" + ` | One data entry. Endpoints with an id only. |
| ` + "`SECUREFILE_NAME_<id>`" + ` | Secure file name. |
| ` + "`SECUREFILE_TICKET_<id>`" + ` | Secure file download ticket. |
| ` + "`INPUT_<NAME>`" + ` | Step input value. |
| ` + "`<NAME>`" + ` | Public variable under its formatted name. |
| ` + "`SECRET_<NAME>`" + ` | Secret variable value. |
| ` + "`VSTS_TASKVARIABLE_<NAME>`" + ` | Task-scope variable value. |
| ` + "`VSTS_PUBLIC_VARIABLES`" + ` | JSON array of public variable names, raw spellings. |
| ` + "`VSTS_SECRET_VARIABLES`" + ` | JSON array of secret variable names. |

The endpoint key is the endpoint id when present. The endpoint named
` + "`SystemVssConnection`" + ` (any casing) uses the fixed key
` + "`SYSTEMVSSCONNECTION`" + `, and endpoints carrying a ` + "`repositoryId`" + ` data
entry fall back to that value. Endpoints with none of the three are
skipped.

` + "`prependPath`" + ` entries are joined in reverse declaration order in
front of the step's inherited PATH. Container steps get the prepended
PATH applied inside the container instead of on the host.

Preview the composed environment for a step without running it:

` + "```" + `
agent-worker env --step compile
` + "```" + `

Secret-bearing values are masked unless ` + "`--reveal`" + ` is given.

## Configuration

Worker behavior is configured in CUE. ` + "`agent-worker config path`" + `
prints the file location and ` + "`agent-worker config init`" + ` writes a
commented default.

| Setting | Description |
|---------|-------------|
| ` + "`container_engine`" + ` | ` + "`auto`" + `, ` + "`docker`" + `, or ` + "`podman`" + `. |
| ` + "`shell.mode`" + ` | ` + "`system`" + ` (host shell) or ` + "`embedded`" + ` (built-in POSIX interpreter). |
| ` + "`worker.continue_after_cancel_kill_attempt`" + ` | Keep going when a canceled step's process survives the kill. |
| ` + "`worker.kill_grace_period_seconds`" + ` | Seconds between interrupt and kill on cancel. 10 by default, 300 at most. |
| ` + "`ui.color_scheme`" + ` | ` + "`auto`" + `, ` + "`dark`" + `, or ` + "`light`" + `. |
| ` + "`ui.verbose`" + ` | Enable debug logging. |

## Agent identity

` + "`agent-worker configure`" + ` records the agent's identity in
` + "`agent.toml`" + ` next to the config file: ` + "`agent_name`" + `, ` + "`pool_name`" + `,
` + "`server_url`" + `, and ` + "`work_folder`" + `. Re-running requires ` + "`--force`" + `.
`
