// Package model defines the wire-format data types shared across teamctl:
// team configs, task files, mailbox messages, and the structured payloads
// exchanged over send_message. Field names follow Go convention; JSON tags
// carry the camelCase wire format.
package model

import "encoding/json"

// ColorPalette is the ordered set of colors assigned to teammates by spawn
// order: the Nth-spawned teammate gets ColorPalette[N % len(ColorPalette)].
var ColorPalette = []string{
	"blue",
	"green",
	"yellow",
	"purple",
	"orange",
	"pink",
	"cyan",
	"red",
}

// LeadMember is the team-lead entry in a TeamConfig's member list. There is
// exactly one per team, identified by the absence of a Prompt field on the
// wire (see Member's UnmarshalJSON).
type LeadMember struct {
	AgentID        string   `json:"agentId"`
	Name           string   `json:"name"`
	AgentType      string   `json:"agentType"`
	Model          string   `json:"model"`
	JoinedAt       int64    `json:"joinedAt"`
	TmuxPaneID     string   `json:"tmuxPaneId,omitempty"`
	Cwd            string   `json:"cwd"`
	Subscriptions  []string `json:"subscriptions,omitempty"`
}

// TeammateMember is a spawned worker entry in a TeamConfig's member list,
// identified by the presence of a Prompt field on the wire.
type TeammateMember struct {
	AgentID          string   `json:"agentId"`
	Name             string   `json:"name"`
	AgentType        string   `json:"agentType"`
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	Color            string   `json:"color"`
	PlanModeRequired bool     `json:"planModeRequired,omitempty"`
	JoinedAt         int64    `json:"joinedAt"`
	TmuxPaneID       string   `json:"tmuxPaneId"`
	Cwd              string   `json:"cwd"`
	Subscriptions    []string `json:"subscriptions,omitempty"`
	BackendType      string   `json:"backendType"`
	IsActive         bool     `json:"isActive"`
	ProcessHandle    string   `json:"processHandle,omitempty"`
}

// Member is a discriminated union of LeadMember and TeammateMember. It
// unmarshals by peeking for a "prompt" key (only workers carry a prompt)
// and marshals whichever concrete member is set.
type Member struct {
	Lead     *LeadMember
	Teammate *TeammateMember
}

// IsLead reports whether this member is the team lead.
func (m Member) IsLead() bool {
	return m.Lead != nil
}

// AgentID returns the member's agent id regardless of which variant is set.
func (m Member) AgentID() string {
	if m.Lead != nil {
		return m.Lead.AgentID
	}
	if m.Teammate != nil {
		return m.Teammate.AgentID
	}
	return ""
}

// Name returns the member's display name regardless of which variant is set.
func (m Member) Name() string {
	if m.Lead != nil {
		return m.Lead.Name
	}
	if m.Teammate != nil {
		return m.Teammate.Name
	}
	return ""
}

// TmuxPaneID returns the member's pane id regardless of which variant is set.
func (m Member) TmuxPaneID() string {
	if m.Lead != nil {
		return m.Lead.TmuxPaneID
	}
	if m.Teammate != nil {
		return m.Teammate.TmuxPaneID
	}
	return ""
}

func (m Member) MarshalJSON() ([]byte, error) {
	if m.Teammate != nil {
		return json.Marshal(m.Teammate)
	}
	return json.Marshal(m.Lead)
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var probe struct {
		Prompt *string `json:"prompt"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Prompt != nil {
		var tm TeammateMember
		if err := json.Unmarshal(data, &tm); err != nil {
			return err
		}
		// A teammate arriving with only one of tmuxPaneId/processHandle
		// set gets the other synchronized from it; older configs wrote
		// only the pane id.
		if tm.TmuxPaneID != "" && tm.ProcessHandle == "" {
			tm.ProcessHandle = tm.TmuxPaneID
		} else if tm.ProcessHandle != "" && tm.TmuxPaneID == "" {
			tm.TmuxPaneID = tm.ProcessHandle
		}
		m.Teammate = &tm
		m.Lead = nil
		return nil
	}
	var lm LeadMember
	if err := json.Unmarshal(data, &lm); err != nil {
		return err
	}
	m.Lead = &lm
	m.Teammate = nil
	return nil
}

// TeamConfig is the persisted, on-disk representation of a team (§4.2).
type TeamConfig struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
	LeadAgentID   string   `json:"leadAgentId"`
	LeadSessionID string   `json:"leadSessionId"`
	Members       []Member `json:"members"`
}

// TaskStatus is the lifecycle state of a TaskFile. Transitions only move
// forward: pending < in_progress < completed. "deleted" removes a task
// entirely rather than being a forward transition.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskDeleted    TaskStatus = "deleted"
)

// statusOrder gives the forward-only ordering among the three live states.
var statusOrder = map[TaskStatus]int{
	TaskPending:    0,
	TaskInProgress: 1,
	TaskCompleted:  2,
}

// StatusOrder returns the ordinal of s for forward-transition checks, and
// whether s is one of the ordered live states (TaskDeleted is not).
func StatusOrder(s TaskStatus) (int, bool) {
	n, ok := statusOrder[s]
	return n, ok
}

// MetadataValue is any JSON scalar permitted in a TaskFile's metadata map.
type MetadataValue = interface{}

// TaskFile is a single task in the shared task graph (§4.4).
type TaskFile struct {
	ID          string                    `json:"id"`
	Subject     string                    `json:"subject"`
	Description string                    `json:"description"`
	ActiveForm  string                    `json:"activeForm,omitempty"`
	Status      TaskStatus                `json:"status"`
	Blocks      []string                  `json:"blocks"`
	BlockedBy   []string                  `json:"blockedBy"`
	Owner       *string                   `json:"owner,omitempty"`
	Metadata    map[string]MetadataValue  `json:"metadata,omitempty"`
}

// InboxMessage is one entry in an agent's append-only mailbox file (§4.3).
type InboxMessage struct {
	From      string  `json:"from"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	Read      bool    `json:"read"`
	Summary   *string `json:"summary,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// IdleNotification is a structured payload serialized into InboxMessage.Text
// when a teammate reports it has no further work.
type IdleNotification struct {
	Type       string `json:"type"`
	From       string `json:"from"`
	Timestamp  string `json:"timestamp"`
	IdleReason string `json:"idleReason,omitempty"`
}

// NewIdleNotification builds an IdleNotification with its discriminator set
// and IdleReason defaulted to "available" when empty.
func NewIdleNotification(from, timestamp, idleReason string) IdleNotification {
	if idleReason == "" {
		idleReason = "available"
	}
	return IdleNotification{Type: "idle_notification", From: from, Timestamp: timestamp, IdleReason: idleReason}
}

// TaskAssignment is a structured payload notifying a teammate it has been
// assigned a task.
type TaskAssignment struct {
	Type        string `json:"type"`
	TaskID      string `json:"taskId"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	AssignedBy  string `json:"assignedBy"`
	Timestamp   string `json:"timestamp"`
}

// NewTaskAssignment builds a TaskAssignment with its discriminator set.
func NewTaskAssignment(taskID, subject, description, assignedBy, timestamp string) TaskAssignment {
	return TaskAssignment{
		Type: "task_assignment", TaskID: taskID, Subject: subject,
		Description: description, AssignedBy: assignedBy, Timestamp: timestamp,
	}
}

// ShutdownRequest is a structured payload the lead sends to a teammate
// asking it to shut down; the teammate answers with a shutdown_response.
type ShutdownRequest struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	From      string `json:"from"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// NewShutdownRequest builds a ShutdownRequest with its discriminator set.
func NewShutdownRequest(requestID, from, reason, timestamp string) ShutdownRequest {
	return ShutdownRequest{Type: "shutdown_request", RequestID: requestID, From: from, Reason: reason, Timestamp: timestamp}
}

// ShutdownApproved is the structured payload a teammate sends to the lead
// when it approves a shutdown request, carrying its pane and backend.
type ShutdownApproved struct {
	Type          string `json:"type"`
	RequestID     string `json:"requestId"`
	From          string `json:"from"`
	Timestamp     string `json:"timestamp"`
	PaneID        string `json:"paneId"`
	BackendType   string `json:"backendType"`
	ProcessHandle string `json:"processHandle,omitempty"`
}

// NewShutdownApproved builds a ShutdownApproved with its discriminator set.
func NewShutdownApproved(requestID, from, timestamp, paneID, backendType, processHandle string) ShutdownApproved {
	return ShutdownApproved{
		Type: "shutdown_approved", RequestID: requestID, From: from, Timestamp: timestamp,
		PaneID: paneID, BackendType: backendType, ProcessHandle: processHandle,
	}
}

// PlanApproval is the structured payload for a plan-mode gate decision
// delivered to a teammate by a plan_approval_response.
type PlanApproval struct {
	Type     string `json:"type"`
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback,omitempty"`
}

// NewPlanApproval builds a PlanApproval with its discriminator set.
func NewPlanApproval(approved bool, feedback string) PlanApproval {
	return PlanApproval{Type: "plan_approval", Approved: approved, Feedback: feedback}
}

// TeamCreateResult is returned by the team store's create-team operation.
type TeamCreateResult struct {
	TeamName     string `json:"teamName"`
	TeamFilePath string `json:"teamFilePath"`
	LeadAgentID  string `json:"leadAgentId"`
}

// TeamDeleteResult is returned by the team store's delete-team operation.
type TeamDeleteResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TeamName string `json:"teamName"`
}

// SpawnResult is returned by the orchestrator's spawn-teammate operation.
type SpawnResult struct {
	AgentID  string `json:"agentId"`
	Name     string `json:"name"`
	TeamName string `json:"teamName"`
	Message  string `json:"message"`
}

// DefaultSpawnMessage is the human-readable note attached to a SpawnResult
// when the caller doesn't supply one.
const DefaultSpawnMessage = "The agent is now running and will receive instructions via mailbox."

// BackendInfo describes one registered backend, as returned by the registry
// and the `backends` CLI command.
type BackendInfo struct {
	Name            string   `json:"name"`
	Binary          string   `json:"binary"`
	Available       bool     `json:"available"`
	DefaultModel    string   `json:"defaultModel"`
	SupportedModels []string `json:"supportedModels"`
}

// SendMessageResult is returned by the send_message tool dispatch.
type SendMessageResult struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Routing   map[string]interface{} `json:"routing,omitempty"`
	RequestID *string                `json:"requestId,omitempty"`
	Target    *string                `json:"target,omitempty"`
}
