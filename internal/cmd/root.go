// Package cmd provides the teamctl CLI commands: a thin human-facing
// layer over the same file-based state the lead process serves.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/backend"
	"github.com/agentteams/teamctl/internal/config"
	"github.com/agentteams/teamctl/internal/orchestrator"
)

var rootDir string

var rootCmd = &cobra.Command{
	Use:           "teamctl",
	Short:         "Orchestrate teams of AI coding-agent CLIs",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `teamctl coordinates a team of heterogeneous AI coding-agent CLIs as
child processes: a persistent lead serves tool requests while workers run
in isolated tmux panes, exchanging messages through on-disk mailboxes and
a shared task graph.

State lives under the root directory (default ~/.claude); every command
reads and writes the same files the lead process does.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", config.DefaultRootDir,
		"root directory for team state")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "teamctl: %v\n", err)
		return 1
	}
	return 0
}

// newOrchestrator builds the orchestrator every subcommand operates
// through, loading daemon settings from the root directory.
func newOrchestrator() (*orchestrator.Orchestrator, config.Settings, error) {
	settings, err := config.Load(rootDir)
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return orchestrator.New(settings, backend.NewRegistry()), settings, nil
}
