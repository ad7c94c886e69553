// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jandreu1/azure-pipelines-agent/internal/config"
	"github.com/jandreu1/azure-pipelines-agent/internal/issue"
)

var (
	configureName  string
	configurePool  string
	configureURL   string
	configureWork  string
	configureForce bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Record this agent's identity",
	Long: `Record the agent's durable identity: its name, pool, server URL, and
work folder. The identity is written next to the worker configuration
and read back on every run.

Running configure also creates the default worker configuration file if
none exists yet.

Examples:
  agent-worker configure
  agent-worker configure --name build-03 --pool Linux --url https://dev.example.com/org`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	defaults := config.DefaultSettings()
	configureCmd.Flags().StringVar(&configureName, "name", defaults.AgentName, "agent name")
	configureCmd.Flags().StringVar(&configurePool, "pool", defaults.PoolName, "agent pool name")
	configureCmd.Flags().StringVar(&configureURL, "url", "", "server collection URL")
	configureCmd.Flags().StringVar(&configureWork, "work", defaults.WorkFolder, "work folder for job working directories")
	configureCmd.Flags().BoolVar(&configureForce, "force", false, "overwrite an existing agent identity")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	path, err := config.SettingsPath()
	if err != nil {
		return err
	}

	if _, err := config.LoadSettings(path); err == nil && !configureForce {
		return reportCommandError(cmd, issue.NewContext().
			Operation("configure the agent").
			Resource(path).
			Suggest("Re-run with --force to overwrite the existing identity").
			Cause(errors.New("agent is already configured")).
			Err())
	}

	settings := &config.AgentSettings{
		AgentName:  configureName,
		PoolName:   configurePool,
		ServerURL:  configureURL,
		WorkFolder: configureWork,
	}
	if err := settings.Save(path); err != nil {
		return reportCommandError(cmd, err)
	}

	if err := config.CreateDefaultConfig(); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+"could not create the default configuration: "+err.Error())
	}

	fmt.Printf("%s Agent %q configured (pool %q)\n", SuccessStyle.Render("✓"), settings.AgentName, settings.PoolName)
	fmt.Printf("  identity: %s\n", path)
	return nil
}
