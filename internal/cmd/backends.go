package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/cli"
)

var backendsJSON bool

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List available agent CLI backends",
	Long: `List every backend whose binary was found on PATH, with its default
model and curated model set.

Supported models shown are a curated set; actual availability depends on
authentication state, account tier, and configured providers.`,
	RunE: runBackends,
}

func init() {
	backendsCmd.Flags().BoolVarP(&backendsJSON, "json", "j", false, "Output as JSON instead of a table")
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	infos := orch.Registry().Infos()

	if backendsJSON {
		return cli.PrintJSON(os.Stdout, infos)
	}
	if len(infos) == 0 {
		return fmt.Errorf("no backends available; install at least one agent CLI")
	}

	colored := cli.IsTerminal(os.Stdout)
	tbl := cli.NewTable(os.Stdout)
	tbl.Row(cli.Colorize("NAME", "bold", colored), "BINARY", "DEFAULT MODEL", "SUPPORTED MODELS")
	for _, info := range infos {
		tbl.Row(info.Name, info.Binary, info.DefaultModel, strings.Join(info.SupportedModels, ", "))
	}
	return tbl.Flush()
}
