package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/cli"
	"github.com/agentteams/teamctl/internal/model"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <team>",
	Short: "Show a team's members and task list",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "Output as JSON instead of text")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	team := args[0]
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	cfg, err := orch.Store().ReadConfig(team)
	if err != nil {
		return err
	}
	tasks, err := orch.Graph().ListTasks(team)
	if err != nil {
		return err
	}

	if statusJSON {
		return cli.PrintJSON(os.Stdout, map[string]interface{}{
			"team":        team,
			"memberCount": len(cfg.Members),
			"tasks":       tasks,
		})
	}

	teammates := 0
	for _, m := range cfg.Members {
		if !m.IsLead() {
			teammates++
		}
	}
	fmt.Printf("Team: %s  (%d teammate(s) + lead)\n\n", team, teammates)

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	colored := cli.IsTerminal(os.Stdout)
	tbl := cli.NewTable(os.Stdout)
	tbl.Row(cli.Colorize("ID", "bold", colored), "STATUS", "OWNER", "SUBJECT")
	for _, task := range tasks {
		owner := "-"
		if task.Owner != nil {
			owner = *task.Owner
		}
		status := string(task.Status)
		switch task.Status {
		case model.TaskPending:
			status = cli.Colorize(status, "yellow", colored)
		case model.TaskInProgress:
			status = cli.Colorize(status, "blue", colored)
		case model.TaskCompleted:
			status = cli.Colorize(status, "green", colored)
		}
		tbl.Row(task.ID, status, owner, task.Subject)
	}
	return tbl.Flush()
}
