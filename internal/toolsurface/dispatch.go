package toolsurface

import (
	"encoding/json"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/orchestrator"
	"github.com/agentteams/teamctl/internal/taskgraph"
)

// Dispatch invokes a tool by its wire name with JSON-encoded arguments.
// Tools hidden by the session's gating state are rejected before any
// business logic runs. This is the adapter the hosting request/response
// framework calls; the typed methods on Surface remain the real API.
func (s *Surface) Dispatch(name string, args json.RawMessage) (interface{}, error) {
	var tier Tier
	found := false
	for _, d := range catalog {
		if d.Name == name {
			tier = d.Tier
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFound("unknown tool %q", name)
	}
	if !visible(tier, s.sess) {
		return nil, apperr.InvalidArgument("tool %q is not available in this session state", name)
	}

	decode := func(v interface{}) error {
		if len(args) == 0 {
			return nil
		}
		if err := json.Unmarshal(args, v); err != nil {
			return apperr.InvalidArgument("decoding arguments for %s: %v", name, err)
		}
		return nil
	}

	switch name {
	case "team_create":
		var a struct {
			TeamName    string `json:"teamName"`
			Description string `json:"description"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TeamCreate(a.TeamName, a.Description)

	case "team_delete":
		var a struct {
			TeamName string `json:"teamName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TeamDelete(a.TeamName)

	case "read_config":
		var a struct {
			TeamName string `json:"teamName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.ReadConfig(a.TeamName)

	case "list_backends":
		return s.ListBackends(), nil

	case "spawn_teammate":
		var a struct {
			TeamName         string `json:"teamName"`
			Name             string `json:"name"`
			Prompt           string `json:"prompt"`
			Model            string `json:"model"`
			Backend          string `json:"backend"`
			AgentType        string `json:"agentType"`
			PlanModeRequired bool   `json:"planModeRequired"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.SpawnTeammate(a.TeamName, a.Name, a.Prompt, orchestrator.SpawnOptions{
			Model:            a.Model,
			Backend:          a.Backend,
			AgentType:        a.AgentType,
			PlanModeRequired: a.PlanModeRequired,
		})

	case "send_message":
		var a struct {
			TeamName  string `json:"teamName"`
			Type      string `json:"type"`
			Recipient string `json:"recipient"`
			Content   string `json:"content"`
			Summary   string `json:"summary"`
			RequestID string `json:"requestId"`
			Approve   *bool  `json:"approve"`
			Sender    string `json:"sender"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.SendMessage(a.TeamName, SendMessageRequest{
			Type:      a.Type,
			Recipient: a.Recipient,
			Content:   a.Content,
			Summary:   a.Summary,
			RequestID: a.RequestID,
			Approve:   a.Approve,
			Sender:    a.Sender,
		})

	case "task_create":
		var a struct {
			TeamName    string                         `json:"teamName"`
			Subject     string                         `json:"subject"`
			Description string                         `json:"description"`
			ActiveForm  string                         `json:"activeForm"`
			Metadata    map[string]model.MetadataValue `json:"metadata"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TaskCreate(a.TeamName, a.Subject, a.Description, a.ActiveForm, a.Metadata)

	case "task_update":
		var a struct {
			TeamName     string                         `json:"teamName"`
			TaskID       string                         `json:"taskId"`
			Status       *model.TaskStatus              `json:"status"`
			Owner        *string                        `json:"owner"`
			Subject      *string                        `json:"subject"`
			Description  *string                        `json:"description"`
			ActiveForm   *string                        `json:"activeForm"`
			AddBlocks    []string                       `json:"addBlocks"`
			AddBlockedBy []string                       `json:"addBlockedBy"`
			Metadata     map[string]model.MetadataValue `json:"metadata"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TaskUpdate(a.TeamName, a.TaskID, taskgraph.UpdateRequest{
			Status:       a.Status,
			Owner:        a.Owner,
			Subject:      a.Subject,
			Description:  a.Description,
			ActiveForm:   a.ActiveForm,
			AddBlocks:    a.AddBlocks,
			AddBlockedBy: a.AddBlockedBy,
			Metadata:     a.Metadata,
		})

	case "task_list":
		var a struct {
			TeamName string `json:"teamName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TaskList(a.TeamName)

	case "task_get":
		var a struct {
			TeamName string `json:"teamName"`
			TaskID   string `json:"taskId"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.TaskGet(a.TeamName, a.TaskID)

	case "read_inbox":
		var a struct {
			TeamName   string `json:"teamName"`
			AgentName  string `json:"agentName"`
			UnreadOnly bool   `json:"unreadOnly"`
			MarkAsRead *bool  `json:"markAsRead"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		markAsRead := true
		if a.MarkAsRead != nil {
			markAsRead = *a.MarkAsRead
		}
		return s.ReadInbox(a.TeamName, a.AgentName, a.UnreadOnly, markAsRead)

	case "poll_inbox":
		var a struct {
			TeamName  string `json:"teamName"`
			AgentName string `json:"agentName"`
			TimeoutMs int    `json:"timeoutMs"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		if a.TimeoutMs <= 0 {
			a.TimeoutMs = 30000
		}
		return s.PollInbox(a.TeamName, a.AgentName, time.Duration(a.TimeoutMs)*time.Millisecond)

	case "force_kill_teammate":
		var a struct {
			TeamName  string `json:"teamName"`
			AgentName string `json:"agentName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.ForceKillTeammate(a.TeamName, a.AgentName)

	case "process_shutdown_approved":
		var a struct {
			TeamName  string `json:"teamName"`
			AgentName string `json:"agentName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.ProcessShutdownApproved(a.TeamName, a.AgentName)

	case "health_check":
		var a struct {
			TeamName  string `json:"teamName"`
			AgentName string `json:"agentName"`
		}
		if err := decode(&a); err != nil {
			return nil, err
		}
		return s.HealthCheck(a.TeamName, a.AgentName)
	}

	return nil, apperr.NotFound("unknown tool %q", name)
}
