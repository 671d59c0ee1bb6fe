// Package taskgraph implements the shared task dependency graph: one JSON
// file per task under a team-scoped directory, mutated under a single
// team-wide lock via a four-phase pipeline (read, validate, mutate
// in-memory, write all-or-nothing). Staging every mutated file in memory
// before the first write keeps multi-file updates atomic: a validation
// failure leaves the graph untouched.
package taskgraph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/paths"
)

// Graph is a path-rooted handle onto every team's task files.
type Graph struct {
	layout paths.Layout
}

// New returns a Graph rooted at root.
func New(root string) *Graph {
	return &Graph{layout: paths.NewLayout(root)}
}

func (g *Graph) teamDir(team string) string {
	return g.layout.TasksDir(team)
}

// nextTaskID returns one past the highest task ID ever allocated for
// team. IDs are never reused: a high-water mark persisted alongside the
// task files keeps the sequence monotonic even after the highest-ID task
// is deleted. Must be called under the team's task lock.
func (g *Graph) nextTaskID(team string) (string, error) {
	max := 0
	if data, err := os.ReadFile(g.nextIDPath(team)); err == nil {
		if n, convErr := strconv.Atoi(strings.TrimSpace(string(data))); convErr == nil && n > max {
			max = n
		}
	}
	entries, err := os.ReadDir(g.teamDir(team))
	if err != nil {
		if os.IsNotExist(err) {
			return strconv.Itoa(max + 1), nil
		}
		return "", apperr.IOFailure("listing task directory", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".json")
		n, err := strconv.Atoi(stem)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1), nil
}

func (g *Graph) nextIDPath(team string) string {
	return filepath.Join(g.teamDir(team), ".highest-id")
}

// CreateTask creates a new pending task for team under its directory lock.
func (g *Graph) CreateTask(team, subject, description, activeForm string, metadata map[string]model.MetadataValue) (model.TaskFile, error) {
	if strings.TrimSpace(subject) == "" {
		return model.TaskFile{}, apperr.InvalidArgument("task subject must not be empty")
	}
	if err := os.MkdirAll(g.teamDir(team), 0o755); err != nil {
		return model.TaskFile{}, apperr.IOFailure("creating tasks directory", err)
	}

	var task model.TaskFile
	err := paths.WithLock(g.layout.TaskLockPath(team), func() error {
		id, err := g.nextTaskID(team)
		if err != nil {
			return err
		}
		task = model.TaskFile{
			ID: id, Subject: subject, Description: description, ActiveForm: activeForm,
			Status: model.TaskPending, Blocks: []string{}, BlockedBy: []string{}, Metadata: metadata,
		}
		if err := writeTaskFile(g.teamDir(team), task); err != nil {
			return err
		}
		if err := os.WriteFile(g.nextIDPath(team), []byte(id), 0o644); err != nil {
			return apperr.IOFailure("recording highest task id", err)
		}
		return nil
	})
	if err != nil {
		return model.TaskFile{}, err
	}
	return task, nil
}

// GetTask reads a single task by ID.
func (g *Graph) GetTask(team, id string) (model.TaskFile, error) {
	return readTaskFile(g.teamDir(team), id)
}

// ListTasks returns every task for team, sorted by integer ID.
func (g *Graph) ListTasks(team string) ([]model.TaskFile, error) {
	entries, err := os.ReadDir(g.teamDir(team))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("team %q does not exist", team)
		}
		return nil, apperr.IOFailure("listing task directory", err)
	}
	var tasks []model.TaskFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".json")
		if _, err := strconv.Atoi(stem); err != nil {
			continue
		}
		task, err := readTaskFile(g.teamDir(team), stem)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		ni, _ := strconv.Atoi(tasks[i].ID)
		nj, _ := strconv.Atoi(tasks[j].ID)
		return ni < nj
	})
	return tasks, nil
}

// UpdateRequest carries every optional field update_task accepts. A nil
// pointer/slice means "leave unchanged"; AddBlocks/AddBlockedBy are
// additive only (no remove-edge operation exists).
type UpdateRequest struct {
	Status       *model.TaskStatus
	Owner        *string
	Subject      *string
	Description  *string
	ActiveForm   *string
	AddBlocks    []string
	AddBlockedBy []string
	Metadata     map[string]model.MetadataValue
}

// UpdateTask runs the four-phase pipeline against task id in team, under
// the team's task lock: validate with zero disk writes, stage all mutated
// task files in memory, then write every changed file only if every check
// passed.
func (g *Graph) UpdateTask(team, id string, req UpdateRequest) (model.TaskFile, error) {
	teamDir := g.teamDir(team)
	var result model.TaskFile

	err := paths.WithLock(g.layout.TaskLockPath(team), func() error {
		// Phase 1: read.
		task, err := readTaskFile(teamDir, id)
		if err != nil {
			return err
		}

		// Phase 2: validate, no disk writes.
		pendingEdges := map[string]map[string]bool{}

		if len(req.AddBlocks) > 0 {
			for _, blockedID := range req.AddBlocks {
				if blockedID == id {
					return apperr.InvariantViolation("task %s cannot block itself", id)
				}
				if !taskFileExists(teamDir, blockedID) {
					return apperr.InvalidArgument("referenced task %q does not exist", blockedID)
				}
			}
			for _, blockedID := range req.AddBlocks {
				addPendingEdge(pendingEdges, blockedID, id)
			}
		}

		if len(req.AddBlockedBy) > 0 {
			for _, blockerID := range req.AddBlockedBy {
				if blockerID == id {
					return apperr.InvariantViolation("task %s cannot be blocked by itself", id)
				}
				if !taskFileExists(teamDir, blockerID) {
					return apperr.InvalidArgument("referenced task %q does not exist", blockerID)
				}
			}
			for _, blockerID := range req.AddBlockedBy {
				addPendingEdge(pendingEdges, id, blockerID)
			}
		}

		if len(req.AddBlocks) > 0 {
			for _, blockedID := range req.AddBlocks {
				if wouldCreateCycle(teamDir, blockedID, id, pendingEdges) {
					return apperr.InvariantViolation("adding block %s -> %s would create a circular dependency", id, blockedID)
				}
			}
		}
		if len(req.AddBlockedBy) > 0 {
			for _, blockerID := range req.AddBlockedBy {
				if wouldCreateCycle(teamDir, id, blockerID, pendingEdges) {
					return apperr.InvariantViolation("adding dependency %s blocked_by %s would create a circular dependency", id, blockerID)
				}
			}
		}

		if req.Status != nil && *req.Status != model.TaskDeleted {
			curOrder, _ := model.StatusOrder(task.Status)
			newOrder, ok := model.StatusOrder(*req.Status)
			if !ok {
				return apperr.InvalidArgument("invalid status %q", *req.Status)
			}
			if newOrder < curOrder {
				return apperr.InvariantViolation("cannot transition from %q to %q", task.Status, *req.Status)
			}
			if *req.Status == model.TaskInProgress || *req.Status == model.TaskCompleted {
				effectiveBlockedBy := map[string]bool{}
				for _, b := range task.BlockedBy {
					effectiveBlockedBy[b] = true
				}
				for _, b := range req.AddBlockedBy {
					effectiveBlockedBy[b] = true
				}
				for blockerID := range effectiveBlockedBy {
					if taskFileExists(teamDir, blockerID) {
						blocker, err := readTaskFile(teamDir, blockerID)
						if err != nil {
							return err
						}
						if blocker.Status != model.TaskCompleted {
							return apperr.InvariantViolation(
								"cannot set status to %q: blocked by task %s (status: %q)", *req.Status, blockerID, blocker.Status)
						}
					}
				}
			}
		}

		// Phase 3: mutate in-memory only.
		pendingWrites := map[string]model.TaskFile{}

		if req.Subject != nil {
			task.Subject = *req.Subject
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.ActiveForm != nil {
			task.ActiveForm = *req.ActiveForm
		}
		if req.Owner != nil {
			task.Owner = req.Owner
		}

		if len(req.AddBlocks) > 0 {
			if err := linkDependency(&task, id, req.AddBlocks, true, teamDir, pendingWrites); err != nil {
				return err
			}
		}
		if len(req.AddBlockedBy) > 0 {
			if err := linkDependency(&task, id, req.AddBlockedBy, false, teamDir, pendingWrites); err != nil {
				return err
			}
		}

		if req.Metadata != nil {
			current := task.Metadata
			if current == nil {
				current = map[string]model.MetadataValue{}
			}
			for k, v := range req.Metadata {
				if v == nil {
					delete(current, k)
				} else {
					current[k] = v
				}
			}
			if len(current) == 0 {
				task.Metadata = nil
			} else {
				task.Metadata = current
			}
		}

		deleting := req.Status != nil && *req.Status == model.TaskDeleted
		if req.Status != nil && !deleting {
			task.Status = *req.Status
			if *req.Status == model.TaskCompleted {
				removeTaskReferences(id, teamDir, pendingWrites, true, false)
			}
		}
		if deleting {
			task.Status = model.TaskDeleted
			removeTaskReferences(id, teamDir, pendingWrites, true, true)
		}

		// Phase 4: write, all-or-nothing.
		if deleting {
			if err := flushPendingWrites(teamDir, pendingWrites); err != nil {
				return err
			}
			if err := os.Remove(taskFilePath(teamDir, id)); err != nil && !os.IsNotExist(err) {
				return apperr.IOFailure("deleting task file", err)
			}
		} else {
			if err := writeTaskFile(teamDir, task); err != nil {
				return err
			}
			if err := flushPendingWrites(teamDir, pendingWrites); err != nil {
				return err
			}
		}

		result = task
		return nil
	})
	if err != nil {
		return model.TaskFile{}, err
	}
	return result, nil
}

// ResetOwnerTasks clears the owner of every task owned by agentName and
// reverts the non-completed ones to pending, under the team's task lock. Used when a member
// is removed so its in-flight work becomes available again.
func (g *Graph) ResetOwnerTasks(team, agentName string) error {
	teamDir := g.teamDir(team)
	return paths.WithLock(g.layout.TaskLockPath(team), func() error {
		entries, err := os.ReadDir(teamDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return apperr.IOFailure("listing task directory", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			stem := strings.TrimSuffix(e.Name(), ".json")
			if _, convErr := strconv.Atoi(stem); convErr != nil {
				continue
			}
			task, err := readTaskFile(teamDir, stem)
			if err != nil {
				return err
			}
			if task.Owner == nil || *task.Owner != agentName {
				continue
			}
			if task.Status != model.TaskCompleted {
				task.Status = model.TaskPending
			}
			task.Owner = nil
			if err := writeTaskFile(teamDir, task); err != nil {
				return err
			}
		}
		return nil
	})
}

func taskFilePath(teamDir, id string) string {
	return filepath.Join(teamDir, id+".json")
}

func taskFileExists(teamDir, id string) bool {
	_, err := os.Stat(taskFilePath(teamDir, id))
	return err == nil
}

func readTaskFile(teamDir, id string) (model.TaskFile, error) {
	data, err := os.ReadFile(taskFilePath(teamDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return model.TaskFile{}, apperr.NotFound("task %q does not exist", id)
		}
		return model.TaskFile{}, apperr.IOFailure("reading task file", err)
	}
	var task model.TaskFile
	if err := json.Unmarshal(data, &task); err != nil {
		return model.TaskFile{}, apperr.IOFailure("parsing task file", err)
	}
	return task, nil
}

func writeTaskFile(teamDir string, task model.TaskFile) error {
	data, err := json.Marshal(task)
	if err != nil {
		return apperr.IOFailure("encoding task file", err)
	}
	if err := os.WriteFile(taskFilePath(teamDir, task.ID), data, 0o644); err != nil {
		return apperr.IOFailure("writing task file", err)
	}
	return nil
}

func flushPendingWrites(teamDir string, pending map[string]model.TaskFile) error {
	for _, task := range pending {
		if err := writeTaskFile(teamDir, task); err != nil {
			return err
		}
	}
	return nil
}

func addPendingEdge(edges map[string]map[string]bool, from, to string) {
	if edges[from] == nil {
		edges[from] = map[string]bool{}
	}
	edges[from][to] = true
}

// wouldCreateCycle performs a BFS from toID through blocked_by edges
// (on-disk unioned with pendingEdges); returns true if it reaches fromID,
// meaning adding the fromID-blocked-by-toID edge would close a cycle.
func wouldCreateCycle(teamDir, fromID, toID string, pendingEdges map[string]map[string]bool) bool {
	visited := map[string]bool{}
	queue := []string{toID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == fromID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		if taskFileExists(teamDir, current) {
			task, err := readTaskFile(teamDir, current)
			if err == nil {
				for _, dep := range task.BlockedBy {
					if !visited[dep] {
						queue = append(queue, dep)
					}
				}
			}
		}
		for dep := range pendingEdges[current] {
			if !visited[dep] {
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// linkDependency appends depIDs to task's forward field (Blocks if
// forwardIsBlocks, else BlockedBy) and, for each, adds taskID to the other
// task's inverse field, staging the other task in pendingWrites.
func linkDependency(task *model.TaskFile, taskID string, depIDs []string, forwardIsBlocks bool, teamDir string, pendingWrites map[string]model.TaskFile) error {
	forward := &task.Blocks
	inverseIsBlocks := false
	if !forwardIsBlocks {
		forward = &task.BlockedBy
		inverseIsBlocks = true
	}
	existing := map[string]bool{}
	for _, v := range *forward {
		existing[v] = true
	}
	for _, depID := range depIDs {
		if !existing[depID] {
			*forward = append(*forward, depID)
			existing[depID] = true
		}
		other, ok := pendingWrites[depID]
		if !ok {
			loaded, err := readTaskFile(teamDir, depID)
			if err != nil {
				return err
			}
			other = loaded
		}
		inverse := &other.BlockedBy
		if inverseIsBlocks {
			inverse = &other.Blocks
		}
		found := false
		for _, v := range *inverse {
			if v == taskID {
				found = true
				break
			}
		}
		if !found {
			*inverse = append(*inverse, taskID)
		}
		pendingWrites[depID] = other
	}
	return nil
}

// removeTaskReferences strips taskID out of every sibling task's BlockedBy
// (and Blocks, if includeBlocks) field, staging changed files in
// pendingWrites.
func removeTaskReferences(taskID, teamDir string, pendingWrites map[string]model.TaskFile, includeBlockedBy, includeBlocks bool) {
	entries, err := os.ReadDir(teamDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".json")
		if _, convErr := strconv.Atoi(stem); convErr != nil {
			continue
		}
		if stem == taskID {
			continue
		}
		other, ok := pendingWrites[stem]
		if !ok {
			loaded, err := readTaskFile(teamDir, stem)
			if err != nil {
				continue
			}
			other = loaded
		}
		changed := false
		if includeBlockedBy {
			if removed, ok := removeID(other.BlockedBy, taskID); ok {
				other.BlockedBy = removed
				changed = true
			}
		}
		if includeBlocks {
			if removed, ok := removeID(other.Blocks, taskID); ok {
				other.Blocks = removed
				changed = true
			}
		}
		if changed {
			pendingWrites[stem] = other
		}
	}
}

func removeID(list []string, id string) ([]string, bool) {
	for i, v := range list {
		if v == id {
			return append(append([]string{}, list[:i]...), list[i+1:]...), true
		}
	}
	return list, false
}
