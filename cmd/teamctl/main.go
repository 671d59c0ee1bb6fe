// teamctl coordinates teams of AI coding-agent CLIs running in tmux panes.
package main

import (
	"os"

	"github.com/agentteams/teamctl/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
