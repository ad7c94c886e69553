// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
	"github.com/jandreu1/azure-pipelines-agent/internal/worker"
	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
)

const maskedValue = "********"

var (
	envStepName       string
	envReveal         bool
	envExcludeNames   bool
	envExcludeSecrets bool
)

var envCmd = &cobra.Command{
	Use:   "env [job-file]",
	Short: "Show the environment a step would receive",
	Long: `Compose and print a step's environment without running it.

The output is one KEY=value line per entry, sorted by key, so it can be
diffed or sourced by scripts. Values of credential-bearing keys (secret
variables, endpoint authorization, secure file tickets) are masked
unless --reveal is given.

Examples:
  agent-worker env --step build              Preview the build step
  agent-worker env deploy.yaml --step push   Preview against a job file
  agent-worker env --step build --reveal     Include secret values`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEnv,
}

func init() {
	envCmd.Flags().StringVar(&envStepName, "step", "", "step to compose the environment for (defaults to the job's only step)")
	envCmd.Flags().BoolVar(&envReveal, "reveal", false, "print secret values instead of masking them")
	envCmd.Flags().BoolVar(&envExcludeNames, "exclude-names", false, "omit the variable name list entries")
	envCmd.Flags().BoolVar(&envExcludeSecrets, "exclude-secrets", false, "omit secret variables entirely")
}

func runEnv(cmd *cobra.Command, args []string) error {
	job, err := loadJobArg(args)
	if err != nil {
		return reportCommandIssue(cmd, jobIssueId(err), err)
	}

	stepName, err := resolveStepName(job, envStepName)
	if err != nil {
		return reportCommandError(cmd, err)
	}

	r := worker.NewRunner(workerConfig())
	env, warnings, err := r.ComposeStepEnvironment(cmd.Context(), job, stepName, worker.VariableOptions{
		ExcludeNames:   envExcludeNames,
		ExcludeSecrets: envExcludeSecrets,
	})
	if err != nil {
		return reportCommandError(cmd, err)
	}

	for _, warning := range warnings {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+warning)
	}

	for _, key := range slices.Sorted(maps.Keys(env)) {
		value := env[key]
		if !envReveal && worker.SensitiveKey(key) {
			value = maskedValue
		}
		fmt.Printf("%s=%s\n", key, value)
	}
	return nil
}

// resolveStepName applies the --step default: a single-step job needs
// no flag, a multi-step job does.
func resolveStepName(job *pipeline.Job, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if len(job.Steps) == 1 {
		return job.Steps[0].Name, nil
	}

	names := make([]string, len(job.Steps))
	for i := range job.Steps {
		names[i] = job.Steps[i].Name
	}
	return "", issue.NewContext().
		Operation("pick a step to preview").
		Suggest("Pass --step with one of: " + strings.Join(names, ", ")).
		Cause(fmt.Errorf("the job has %d steps", len(job.Steps))).
		Err()
}
