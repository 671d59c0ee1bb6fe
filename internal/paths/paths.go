// Package paths computes the on-disk filesystem layout shared by every
// stateful package (team store, mailbox, task graph) and provides the
// advisory exclusive file lock used to guard multi-file aggregates. The
// layout under the root directory is:
//
//	teams/<team>/config.json
//	teams/<team>/inboxes/<agent>.json
//	teams/<team>/inboxes/.lock
//	teams/<team>/runs/<agent>-<ms>.last-message.txt
//	tasks/<team>/<id>.json
//	tasks/<team>/.lock
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout resolves every path used by teamctl under a single root directory.
type Layout struct {
	Root string
}

// NewLayout returns a Layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// TeamDir is the directory holding a team's config and mailboxes.
func (l Layout) TeamDir(team string) string {
	return filepath.Join(l.Root, "teams", team)
}

// ConfigPath is the team's config.json.
func (l Layout) ConfigPath(team string) string {
	return filepath.Join(l.TeamDir(team), "config.json")
}

// InboxesDir is the directory holding every agent's mailbox file.
func (l Layout) InboxesDir(team string) string {
	return filepath.Join(l.TeamDir(team), "inboxes")
}

// InboxPath is a single agent's mailbox file.
func (l Layout) InboxPath(team, agent string) string {
	return filepath.Join(l.InboxesDir(team), agent+".json")
}

// InboxLockPath is the lockfile guarding every mailbox under a team.
func (l Layout) InboxLockPath(team string) string {
	return filepath.Join(l.InboxesDir(team), ".lock")
}

// RunsDir is the directory holding one-shot backends' result files.
func (l Layout) RunsDir(team string) string {
	return filepath.Join(l.TeamDir(team), "runs")
}

// RunResultPath is the result file a one-shot backend writes its final
// message to, named so concurrent spawns of the same agent never collide.
func (l Layout) RunResultPath(team, agent string, spawnedAtMillis int64) string {
	return filepath.Join(l.RunsDir(team), fmt.Sprintf("%s-%d.last-message.txt", agent, spawnedAtMillis))
}

// TasksDir is the directory holding a team's task files.
func (l Layout) TasksDir(team string) string {
	return filepath.Join(l.Root, "tasks", team)
}

// TaskPath is a single task's file.
func (l Layout) TaskPath(team, id string) string {
	return filepath.Join(l.TasksDir(team), id+".json")
}

// TaskLockPath is the lockfile guarding every task file under a team.
func (l Layout) TaskLockPath(team string) string {
	return filepath.Join(l.TasksDir(team), ".lock")
}

// EnsureTeamDirs creates every directory a fresh team needs: teams/<team>,
// its inboxes and runs subdirectories, and tasks/<team>.
func (l Layout) EnsureTeamDirs(team string) error {
	dirs := []string{
		l.TeamDir(team),
		l.InboxesDir(team),
		l.RunsDir(team),
		l.TasksDir(team),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}

// TeamExists reports whether team's config file is present.
func (l Layout) TeamExists(team string) bool {
	_, err := os.Stat(l.ConfigPath(team))
	return err == nil
}
