package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/cli"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config <team>",
	Short: "Show a team's configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVarP(&configJSON, "json", "j", false, "Output as JSON instead of text")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	cfg, err := orch.Store().ReadConfig(args[0])
	if err != nil {
		return err
	}

	if configJSON {
		return cli.PrintJSON(os.Stdout, cfg)
	}

	desc := cfg.Description
	if desc == "" {
		desc = "(none)"
	}
	fmt.Printf("Team: %s\n", cfg.Name)
	fmt.Printf("Description: %s\n", desc)
	fmt.Printf("Lead: %s\n", cfg.LeadAgentID)
	fmt.Printf("Members: %d\n\n", len(cfg.Members))

	colored := cli.IsTerminal(os.Stdout)
	tbl := cli.NewTable(os.Stdout)
	tbl.Row(cli.Colorize("NAME", "bold", colored), "TYPE", "MODEL", "BACKEND", "ACTIVE")
	for _, m := range cfg.Members {
		if m.Teammate != nil {
			active := "no"
			if m.Teammate.IsActive {
				active = "yes"
			}
			name := cli.Colorize(m.Teammate.Name, m.Teammate.Color, colored)
			tbl.Row(name, m.Teammate.AgentType, m.Teammate.Model, m.Teammate.BackendType, active)
		} else if m.Lead != nil {
			tbl.Row(m.Lead.Name, m.Lead.AgentType, m.Lead.Model, "-", "-")
		}
	}
	return tbl.Flush()
}
