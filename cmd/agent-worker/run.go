// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
	"github.com/jandreu1/azure-pipelines-agent/internal/worker"
	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
)

// canceledExitCode is the conventional 128+SIGINT code reported when
// the run stops on cancellation.
const canceledExitCode = 130

var (
	runStepName string
	runUsePTY   bool
	runEmbedded bool
)

var runCmd = &cobra.Command{
	Use:   "run [job-file]",
	Short: "Run a job's steps in order",
	Long: `Run a job definition step by step.

Each step gets a freshly composed environment: endpoint, secure file,
input, and variable projections plus the job's PATH prepends. A failing
or canceled step stops the run.

Without a job-file argument, the current directory is searched for
` + strings.Join(pipeline.DefaultFileNames, ", ") + `.

Examples:
  agent-worker run                  Run the job in the current directory
  agent-worker run build.yaml       Run a specific job file
  agent-worker run --step deploy    Run a single step of the job
  agent-worker run --pty            Give host steps a pseudo-terminal
  agent-worker run --embedded-shell Use the built-in POSIX interpreter`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runStepName, "step", "", "run only the named step")
	runCmd.Flags().BoolVar(&runUsePTY, "pty", false, "run host steps under a pseudo-terminal")
	runCmd.Flags().BoolVar(&runEmbedded, "embedded-shell", false, "run host steps in the embedded POSIX interpreter")
}

func runRun(cmd *cobra.Command, args []string) error {
	job, err := loadJobArg(args)
	if err != nil {
		return reportCommandIssue(cmd, jobIssueId(err), err)
	}

	r := worker.NewRunner(workerConfig(),
		worker.WithPTY(runUsePTY),
		worker.WithEmbeddedShell(runEmbedded),
	)

	if runStepName != "" {
		res, err := r.RunStep(cmd.Context(), job, runStepName)
		if err != nil {
			return reportRunError(cmd, err)
		}
		return reportStep(runStepName, res)
	}

	result, err := r.RunJob(cmd.Context(), job)
	if err != nil {
		return reportRunError(cmd, err)
	}
	return reportJob(result)
}

// jobIssueId classifies a job loading failure for the issue catalog.
func jobIssueId(err error) issue.Id {
	if errors.Is(err, pipeline.ErrNoJobFile) {
		return issue.JobFileNotFoundId
	}
	return issue.JobFileInvalidId
}

// loadJobArg resolves and loads the job file named by args, falling
// back to the default names in the current directory.
func loadJobArg(args []string) (*pipeline.Job, error) {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		found, err := pipeline.Find(".")
		if err != nil {
			return nil, issue.NewContext().
				Operation("find a job definition").
				Suggest("Pass the job file explicitly: agent-worker run <job-file>").
				Cause(err).
				Err()
		}
		path = found
	}

	job, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, issue.NewContext().
			Operation("load the job definition").
			Resource(path).
			Suggest("Check the file against 'agent-worker docs' for the job format").
			Cause(err).
			Err()
	}
	return job, nil
}

// reportStep prints a single step's outcome and maps it to the process
// exit code.
func reportStep(name string, res *worker.Result) error {
	switch {
	case res.Canceled:
		fmt.Fprintf(os.Stderr, "%s step %q canceled\n", WarningStyle.Render("!"), name)
		return &ExitError{Code: canceledExitCode}
	case res.ExitCode != 0:
		fmt.Fprintf(os.Stderr, "%s step %q failed with exit code %d\n", ErrorStyle.Render("✗"), name, res.ExitCode)
		return &ExitError{Code: stepExitCode(res)}
	default:
		fmt.Println(SuccessStyle.Render("✓") + fmt.Sprintf(" step %q succeeded", name))
		return nil
	}
}

// reportJob prints the job's outcome and maps the stopping step to the
// process exit code.
func reportJob(result *worker.JobResult) error {
	if result.Succeeded() {
		fmt.Println(SuccessStyle.Render("✓") + fmt.Sprintf(" job succeeded (%d steps)", len(result.Steps)))
		return nil
	}
	if len(result.Steps) == 0 {
		return &ExitError{Code: 1}
	}

	last := result.Steps[len(result.Steps)-1]
	if last.Result.Canceled {
		fmt.Fprintf(os.Stderr, "%s job canceled at step %q\n", WarningStyle.Render("!"), last.Step)
		return &ExitError{Code: canceledExitCode}
	}
	fmt.Fprintf(os.Stderr, "%s step %q failed with exit code %d\n", ErrorStyle.Render("✗"), last.Step, last.Result.ExitCode)
	return &ExitError{Code: stepExitCode(last.Result)}
}

// stepExitCode clamps a step's exit code into the range the process
// can report.
func stepExitCode(res *worker.Result) int {
	if res.ExitCode > 0 && res.ExitCode < 256 {
		return res.ExitCode
	}
	return 1
}
