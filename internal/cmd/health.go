package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/cli"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health <team> <agent>",
	Short: "Check whether a teammate's process is alive",
	Args:  cobra.ExactArgs(2),
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVarP(&healthJSON, "json", "j", false, "Output as JSON instead of text")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	report, err := orch.HealthCheck(args[0], args[1])
	if err != nil {
		return err
	}

	if healthJSON {
		return cli.PrintJSON(os.Stdout, report)
	}
	state := "dead"
	if report.Alive {
		state = "alive"
	}
	fmt.Printf("%s: %s (%s, %s)\n", report.AgentName, state, report.Backend, report.Detail)
	if !report.Alive {
		os.Exit(1)
	}
	return nil
}
