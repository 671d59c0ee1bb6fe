package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill <team> <agent>",
	Short: "Force-kill a teammate and remove it from the team",
	Long: `Force-kill a teammate's process, remove it from the team config, and
release its tasks back to the pool (non-completed tasks return to pending
with no owner).`,
	Args: cobra.ExactArgs(2),
	RunE: runKill,
}

func init() {
	rootCmd.AddCommand(killCmd)
}

func runKill(cmd *cobra.Command, args []string) error {
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	if err := orch.ForceKillTeammate(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("%s has been stopped.\n", args[1])
	return nil
}
