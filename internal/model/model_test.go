package model

import (
	"encoding/json"
	"testing"
)

func TestMember_UnmarshalJSON_DiscriminatesOnPrompt(t *testing.T) {
	leadJSON := `{"agentId":"a1","name":"lead","agentType":"claude-code","model":"opus","joinedAt":1,"cwd":"/tmp"}`
	var lead Member
	if err := json.Unmarshal([]byte(leadJSON), &lead); err != nil {
		t.Fatalf("unmarshal lead: %v", err)
	}
	if !lead.IsLead() {
		t.Errorf("expected lead member, got teammate")
	}

	teammateJSON := `{"agentId":"a2","name":"worker","agentType":"codex","model":"gpt","prompt":"do the thing","color":"blue","joinedAt":2,"tmuxPaneId":"%1","cwd":"/tmp","backendType":"codex"}`
	var tm Member
	if err := json.Unmarshal([]byte(teammateJSON), &tm); err != nil {
		t.Fatalf("unmarshal teammate: %v", err)
	}
	if tm.IsLead() {
		t.Errorf("expected teammate member, got lead")
	}
	if tm.Teammate.Prompt != "do the thing" {
		t.Errorf("Prompt = %q, want %q", tm.Teammate.Prompt, "do the thing")
	}
}

func TestMember_UnmarshalJSON_SyncsPaneAndProcessHandle(t *testing.T) {
	paneOnly := `{"agentId":"a3","name":"w","agentType":"aider","model":"gpt","prompt":"p","color":"green","joinedAt":3,"tmuxPaneId":"%5","cwd":"/tmp"}`
	var m Member
	if err := json.Unmarshal([]byte(paneOnly), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Teammate.ProcessHandle != "%5" {
		t.Errorf("ProcessHandle = %q, want synced to %q", m.Teammate.ProcessHandle, "%5")
	}
}

func TestMember_MarshalJSON_RoundTrips(t *testing.T) {
	original := Member{Teammate: &TeammateMember{
		AgentID: "a4", Name: "w", AgentType: "amp", Model: "m", Prompt: "p",
		Color: "red", JoinedAt: 4, TmuxPaneID: "%9", Cwd: "/tmp", BackendType: "amp",
	}}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTripped Member
	if err := json.Unmarshal(data, &roundTripped); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if roundTripped.Teammate.AgentID != "a4" {
		t.Errorf("AgentID = %q, want %q", roundTripped.Teammate.AgentID, "a4")
	}
}

func TestInboxMessage_FromFieldIsLiteral(t *testing.T) {
	msg := InboxMessage{From: "team-lead", Text: "hello", Timestamp: "2026-01-01T00:00:00Z"}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := raw["from"]; !ok {
		t.Errorf("wire format missing literal %q key: %s", "from", data)
	}
}

func TestStatusOrder_ForwardOnly(t *testing.T) {
	pendingOrd, ok := StatusOrder(TaskPending)
	if !ok {
		t.Fatal("TaskPending should be ordered")
	}
	inProgressOrd, _ := StatusOrder(TaskInProgress)
	completedOrd, _ := StatusOrder(TaskCompleted)
	if !(pendingOrd < inProgressOrd && inProgressOrd < completedOrd) {
		t.Errorf("expected pending < in_progress < completed, got %d, %d, %d", pendingOrd, inProgressOrd, completedOrd)
	}
	if _, ok := StatusOrder(TaskDeleted); ok {
		t.Errorf("TaskDeleted should not be part of the forward ordering")
	}
}

func TestColorPalette_WrapsModulo(t *testing.T) {
	if len(ColorPalette) != 8 {
		t.Fatalf("len(ColorPalette) = %d, want 8", len(ColorPalette))
	}
	if ColorPalette[8%8] != ColorPalette[0] {
		t.Errorf("palette should wrap at index 8 back to index 0")
	}
}
