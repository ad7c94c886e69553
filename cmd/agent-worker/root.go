// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for the agent worker.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/internal/container"
	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// loadedCfg is the configuration resolved by initRootConfig. Nil
	// when loading failed; commands fall back to defaults.
	loadedCfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "agent-worker",
		Short: "Run pipeline jobs the way a build agent does",
		Long: TitleStyle.Render("agent-worker") + SubtitleStyle.Render(" - Run pipeline jobs the way a build agent does") + `

agent-worker takes a job definition (YAML or JSON), composes each
step's environment the way a hosted build agent would (service
endpoints, secure files, inputs, variables, PATH prepends), and runs
the steps on the host shell, an embedded POSIX interpreter, or inside
the job's containers (Docker/Podman).

` + SubtitleStyle.Render("Quick Start:") + `
  1. Write a job.yaml with the steps to run
  2. Preview a step's environment with: agent-worker env --step <name>
  3. Run the job with: agent-worker run

` + SubtitleStyle.Render("Examples:") + `
  agent-worker run                  Run the job in ./job.yaml
  agent-worker run build.yaml       Run a specific job file
  agent-worker run --step deploy    Run a single step
  agent-worker env --step build     Show the environment a step receives
  agent-worker configure            Record this agent's identity
  agent-worker config show          Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <config-dir>/agent-worker/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(docsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// fang overrides rootCmd.Version, so the version goes through
	// fang.WithVersion. The interrupt notification cancels the command
	// context, which is what starts the step kill sequence.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig loads the configuration and wires structured logging.
func initRootConfig() {
	opts := config.LoadOptions{}
	if cfgFile != "" {
		opts.ConfigFilePath = cfgFile
	}

	cfg, err := config.NewProvider().Load(context.Background(), opts)
	if err != nil {
		// Configuration problems never block the run; defaults apply.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	loadedCfg = cfg

	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}

	initLogging()
}

// initLogging routes the internal packages' slog output through the
// terminal logger.
func initLogging() {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "agent-worker",
	})
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// formatErrorForDisplay formats an error for user display.
// ActionableErrors render with their suggestions; verbose mode adds the
// cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportCommandError prints err once in styled form and converts it to
// a plain exit failure so cobra does not print it a second time.
func reportCommandError(cmd *cobra.Command, err error) error {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1}
}

// reportCommandIssue renders the long-form catalog entry for the
// failure class before reporting the error itself.
func reportCommandIssue(cmd *cobra.Command, id issue.Id, err error) error {
	if entry := issue.Get(id); entry != nil {
		if rendered, rerr := entry.Render("dark"); rerr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}
	return reportCommandError(cmd, err)
}

// reportRunError maps run-time failures to their catalog classes
// before reporting.
func reportRunError(cmd *cobra.Command, err error) error {
	if errors.Is(err, container.ErrNoEngine) {
		return reportCommandIssue(cmd, issue.ContainerEngineNotFoundId, err)
	}
	return reportCommandError(cmd, err)
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}

// workerConfig returns the loaded configuration, or defaults when
// loading failed.
func workerConfig() *config.Config {
	if loadedCfg != nil {
		return loadedCfg
	}
	return config.DefaultConfig()
}
