package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentteams/teamctl/internal/cli"
)

var (
	inboxJSON   bool
	inboxUnread bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox <team> <agent>",
	Short: "Show an agent's mailbox",
	Long: `Show an agent's mailbox without marking anything as read; this is an
observer view, safe to run while the team is live.`,
	Args: cobra.ExactArgs(2),
	RunE: runInbox,
}

func init() {
	inboxCmd.Flags().BoolVarP(&inboxJSON, "json", "j", false, "Output as JSON instead of text")
	inboxCmd.Flags().BoolVar(&inboxUnread, "unread", false, "Only show unread messages")
	rootCmd.AddCommand(inboxCmd)
}

func runInbox(cmd *cobra.Command, args []string) error {
	team, agent := args[0], args[1]
	orch, _, err := newOrchestrator()
	if err != nil {
		return err
	}
	if !orch.Store().TeamExists(team) {
		return fmt.Errorf("team %q not found", team)
	}
	msgs, err := orch.Mail().ReadInbox(team, agent, inboxUnread, false)
	if err != nil {
		return err
	}

	if inboxJSON {
		return cli.PrintJSON(os.Stdout, msgs)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return nil
	}
	colored := cli.IsTerminal(os.Stdout)
	for _, msg := range msgs {
		marker := " "
		if !msg.Read {
			marker = "*"
		}
		from := msg.From
		if msg.Color != nil {
			from = cli.Colorize(from, *msg.Color, colored)
		}
		header := fmt.Sprintf("%s %s  %s", marker, msg.Timestamp, from)
		if msg.Summary != nil {
			header += "  (" + *msg.Summary + ")"
		}
		fmt.Println(header)
		fmt.Printf("  %s\n", msg.Text)
	}
	return nil
}
