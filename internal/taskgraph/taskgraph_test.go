package taskgraph

import (
	"testing"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
)

func strPtr(s string) *string { return &s }

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }

func TestCreateTask_AssignsSequentialIDs(t *testing.T) {
	g := New(t.TempDir())
	a, err := g.CreateTask("alpha", "first", "", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	b, err := g.CreateTask("alpha", "second", "", "", nil)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if a.ID != "1" || b.ID != "2" {
		t.Errorf("IDs = %q, %q, want 1, 2", a.ID, b.ID)
	}
}

func TestCreateTask_RejectsEmptySubject(t *testing.T) {
	g := New(t.TempDir())
	if _, err := g.CreateTask("alpha", "   ", "", "", nil); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("error = %v, want KindInvalidArgument", err)
	}
}

func TestDependencyGraph_NonCyclicSucceedsCyclicFails(t *testing.T) {
	g := New(t.TempDir())
	a, _ := g.CreateTask("alpha", "A", "", "", nil)
	b, _ := g.CreateTask("alpha", "B", "", "", nil)
	c, _ := g.CreateTask("alpha", "C", "", "", nil)

	if _, err := g.UpdateTask("alpha", b.ID, UpdateRequest{AddBlockedBy: []string{a.ID}}); err != nil {
		t.Fatalf("B blocked_by A: %v", err)
	}
	if _, err := g.UpdateTask("alpha", c.ID, UpdateRequest{AddBlockedBy: []string{b.ID}}); err != nil {
		t.Fatalf("C blocked_by B: %v", err)
	}

	// C.blocked_by=[A] is fine even though A already transitively reaches C via B.
	if _, err := g.UpdateTask("alpha", c.ID, UpdateRequest{AddBlockedBy: []string{a.ID}}); err != nil {
		t.Errorf("C blocked_by A (non-cyclic, transitively reachable) should succeed: %v", err)
	}

	// A.blocked_by=[C] closes a cycle (A -> B -> C -> A).
	_, err := g.UpdateTask("alpha", a.ID, UpdateRequest{AddBlockedBy: []string{c.ID}})
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Errorf("A blocked_by C error = %v, want KindInvariantViolation (cycle)", err)
	}

	// Completing A clears B's blocked_by but leaves A.blocks containing B.
	if _, err := g.UpdateTask("alpha", a.ID, UpdateRequest{Status: statusPtr(model.TaskCompleted)}); err != nil {
		t.Fatalf("complete A: %v", err)
	}
	bAfter, err := g.GetTask("alpha", b.ID)
	if err != nil {
		t.Fatalf("GetTask(B): %v", err)
	}
	if len(bAfter.BlockedBy) != 0 {
		t.Errorf("B.blocked_by after completing A = %v, want empty", bAfter.BlockedBy)
	}
	aAfter, err := g.GetTask("alpha", a.ID)
	if err != nil {
		t.Fatalf("GetTask(A): %v", err)
	}
	found := false
	for _, id := range aAfter.Blocks {
		if id == b.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("A.blocks after completing A = %v, want to still contain B (%s)", aAfter.Blocks, b.ID)
	}
}

func TestBlockerEnforcement_ClearedOnDelete(t *testing.T) {
	g := New(t.TempDir())
	blocked, _ := g.CreateTask("alpha", "Blocked", "", "", nil)
	blocker, _ := g.CreateTask("alpha", "Blocker", "", "", nil)

	if _, err := g.UpdateTask("alpha", blocked.ID, UpdateRequest{AddBlockedBy: []string{blocker.ID}}); err != nil {
		t.Fatalf("link: %v", err)
	}

	_, err := g.UpdateTask("alpha", blocked.ID, UpdateRequest{Status: statusPtr(model.TaskInProgress)})
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Errorf("starting blocked task error = %v, want KindInvariantViolation", err)
	}

	if _, err := g.UpdateTask("alpha", blocker.ID, UpdateRequest{Status: statusPtr(model.TaskDeleted)}); err != nil {
		t.Fatalf("delete blocker: %v", err)
	}
	if _, err := g.UpdateTask("alpha", blocked.ID, UpdateRequest{Status: statusPtr(model.TaskInProgress)}); err != nil {
		t.Errorf("starting task after blocker deleted should succeed: %v", err)
	}
}

func TestUpdateTask_RejectsBackwardTransition(t *testing.T) {
	g := New(t.TempDir())
	task, _ := g.CreateTask("alpha", "T", "", "", nil)
	if _, err := g.UpdateTask("alpha", task.ID, UpdateRequest{Status: statusPtr(model.TaskCompleted)}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err := g.UpdateTask("alpha", task.ID, UpdateRequest{Status: statusPtr(model.TaskPending)})
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Errorf("backward transition error = %v, want KindInvariantViolation", err)
	}
}

func TestUpdateTask_AddBlocksIsIdempotent(t *testing.T) {
	g := New(t.TempDir())
	a, _ := g.CreateTask("alpha", "A", "", "", nil)
	b, _ := g.CreateTask("alpha", "B", "", "", nil)

	if _, err := g.UpdateTask("alpha", a.ID, UpdateRequest{AddBlocks: []string{b.ID}}); err != nil {
		t.Fatalf("first add_blocks: %v", err)
	}
	second, err := g.UpdateTask("alpha", a.ID, UpdateRequest{AddBlocks: []string{b.ID}})
	if err != nil {
		t.Fatalf("second add_blocks: %v", err)
	}
	if len(second.Blocks) != 1 {
		t.Errorf("Blocks after duplicate add = %v, want exactly one entry (deduped)", second.Blocks)
	}
}

func TestUpdateTask_MetadataMergeWithNullDelete(t *testing.T) {
	g := New(t.TempDir())
	task, _ := g.CreateTask("alpha", "T", "", "", map[string]model.MetadataValue{"a": "1", "b": "2"})

	updated, err := g.UpdateTask("alpha", task.ID, UpdateRequest{Metadata: map[string]model.MetadataValue{"a": nil, "c": "3"}})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, ok := updated.Metadata["a"]; ok {
		t.Errorf("metadata key %q should have been deleted", "a")
	}
	if updated.Metadata["b"] != "2" {
		t.Errorf("metadata key %q should be preserved, got %v", "b", updated.Metadata["b"])
	}
	if updated.Metadata["c"] != "3" {
		t.Errorf("metadata key %q should be added, got %v", "c", updated.Metadata["c"])
	}
}

func TestUpdateTask_DeleteCascadesBothFields(t *testing.T) {
	g := New(t.TempDir())
	a, _ := g.CreateTask("alpha", "A", "", "", nil)
	b, _ := g.CreateTask("alpha", "B", "", "", nil)

	if _, err := g.UpdateTask("alpha", b.ID, UpdateRequest{AddBlockedBy: []string{a.ID}}); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := g.UpdateTask("alpha", a.ID, UpdateRequest{Status: statusPtr(model.TaskDeleted)}); err != nil {
		t.Fatalf("delete A: %v", err)
	}
	bAfter, err := g.GetTask("alpha", b.ID)
	if err != nil {
		t.Fatalf("GetTask(B): %v", err)
	}
	if len(bAfter.BlockedBy) != 0 {
		t.Errorf("B.blocked_by after deleting A = %v, want empty", bAfter.BlockedBy)
	}
	if _, err := g.GetTask("alpha", a.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("GetTask(deleted A) error = %v, want KindNotFound", err)
	}
}

func TestListTasks_SortedByIntegerID(t *testing.T) {
	g := New(t.TempDir())
	for i := 0; i < 12; i++ {
		if _, err := g.CreateTask("alpha", "T", "", "", nil); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	tasks, err := g.ListTasks("alpha")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 12 {
		t.Fatalf("len(tasks) = %d, want 12", len(tasks))
	}
	if tasks[9].ID != "10" {
		t.Errorf("tasks[9].ID = %q, want %q (numeric, not lexicographic, sort)", tasks[9].ID, "10")
	}
}

func TestResetOwnerTasks_LeavesCompletedAlone(t *testing.T) {
	g := New(t.TempDir())
	pending, _ := g.CreateTask("alpha", "P", "", "", nil)
	done, _ := g.CreateTask("alpha", "D", "", "", nil)

	if _, err := g.UpdateTask("alpha", pending.ID, UpdateRequest{Status: statusPtr(model.TaskInProgress), Owner: strPtr("bob")}); err != nil {
		t.Fatalf("assign pending: %v", err)
	}
	if _, err := g.UpdateTask("alpha", done.ID, UpdateRequest{Owner: strPtr("bob")}); err != nil {
		t.Fatalf("assign done: %v", err)
	}
	if _, err := g.UpdateTask("alpha", done.ID, UpdateRequest{Status: statusPtr(model.TaskCompleted)}); err != nil {
		t.Fatalf("complete done: %v", err)
	}

	if err := g.ResetOwnerTasks("alpha", "bob"); err != nil {
		t.Fatalf("ResetOwnerTasks: %v", err)
	}

	p, _ := g.GetTask("alpha", pending.ID)
	if p.Owner != nil || p.Status != model.TaskPending {
		t.Errorf("reset pending task = %+v, want owner=nil status=pending", p)
	}
	d, _ := g.GetTask("alpha", done.ID)
	if d.Owner != nil {
		t.Errorf("completed task owner = %v, want nil (owner always cleared)", d.Owner)
	}
	if d.Status != model.TaskCompleted {
		t.Errorf("completed task status = %q, want unchanged completed", d.Status)
	}
}

func TestCreateTask_NeverReusesDeletedHighestID(t *testing.T) {
	g := New(t.TempDir())
	team := "alpha"

	for i := 0; i < 3; i++ {
		if _, err := g.CreateTask(team, "subj", "desc", "", nil); err != nil {
			t.Fatal(err)
		}
	}
	deleted := model.TaskDeleted
	if _, err := g.UpdateTask(team, "3", UpdateRequest{Status: &deleted}); err != nil {
		t.Fatal(err)
	}

	task, err := g.CreateTask(team, "subj", "desc", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "4" {
		t.Errorf("id after deleting highest = %q, want 4 (no reuse)", task.ID)
	}
}
