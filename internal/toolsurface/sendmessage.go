package toolsurface

import (
	"fmt"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/mailbox"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/teamstore"
)

// SendMessageRequest is the single dispatch point for every message
// variant the lead and workers exchange. Type selects the variant; the
// other fields are read per the variant's contract.
type SendMessageRequest struct {
	Type      string
	Recipient string
	Content   string
	Summary   string
	RequestID string
	Approve   *bool
	Sender    string
}

// SendMessage dispatches req against the session's team state.
func (s *Surface) SendMessage(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	switch req.Type {
	case "message":
		return s.sendDirectMessage(teamName, req)
	case "broadcast":
		return s.sendBroadcast(teamName, req)
	case "shutdown_request":
		return s.sendShutdownRequest(teamName, req)
	case "shutdown_response":
		return s.sendShutdownResponse(teamName, req)
	case "plan_approval_response":
		return s.sendPlanApprovalResponse(teamName, req)
	}
	return model.SendMessageResult{}, apperr.InvalidArgument("unknown message type %q", req.Type)
}

// memberColor returns the teammate's color, or "" for the lead or an
// unknown name.
func memberColor(cfg model.TeamConfig, name string) string {
	for _, m := range cfg.Members {
		if m.Teammate != nil && m.Teammate.Name == name {
			return m.Teammate.Color
		}
	}
	return ""
}

func hasMember(cfg model.TeamConfig, name string) bool {
	for _, m := range cfg.Members {
		if m.Name() == name {
			return true
		}
	}
	return false
}

func (s *Surface) sendDirectMessage(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	if req.Content == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("message content must not be empty")
	}
	if req.Summary == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("message summary must not be empty")
	}
	if req.Recipient == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("message recipient must not be empty")
	}
	cfg, err := s.orch.Store().ReadConfig(teamName)
	if err != nil {
		return model.SendMessageResult{}, err
	}
	if !hasMember(cfg, req.Recipient) {
		return model.SendMessageResult{}, apperr.InvalidArgument(
			"recipient %q is not a member of team %q", req.Recipient, teamName)
	}
	color := memberColor(cfg, req.Recipient)
	if err := s.orch.Mail().SendPlainMessage(
		teamName, req.Recipient, teamstore.LeadAgentName, req.Content, req.Summary, color, time.Now()); err != nil {
		return model.SendMessageResult{}, err
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("Message sent to %s", req.Recipient),
		Routing: map[string]interface{}{
			"sender":      teamstore.LeadAgentName,
			"target":      req.Recipient,
			"targetColor": color,
			"summary":     req.Summary,
			"content":     req.Content,
		},
	}, nil
}

func (s *Surface) sendBroadcast(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	if req.Summary == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("broadcast summary must not be empty")
	}
	cfg, err := s.orch.Store().ReadConfig(teamName)
	if err != nil {
		return model.SendMessageResult{}, err
	}
	count := 0
	now := time.Now()
	for _, m := range cfg.Members {
		if m.Teammate == nil {
			continue
		}
		if err := s.orch.Mail().SendPlainMessage(
			teamName, m.Teammate.Name, teamstore.LeadAgentName, req.Content, req.Summary, "", now); err != nil {
			return model.SendMessageResult{}, err
		}
		count++
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("Broadcast sent to %d teammate(s)", count),
	}, nil
}

func (s *Surface) sendShutdownRequest(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	if req.Recipient == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("shutdown request recipient must not be empty")
	}
	if req.Recipient == teamstore.LeadAgentName {
		return model.SendMessageResult{}, apperr.Conflict("cannot send shutdown request to %s", teamstore.LeadAgentName)
	}
	cfg, err := s.orch.Store().ReadConfig(teamName)
	if err != nil {
		return model.SendMessageResult{}, err
	}
	if !hasMember(cfg, req.Recipient) {
		return model.SendMessageResult{}, apperr.InvalidArgument(
			"recipient %q is not a member of team %q", req.Recipient, teamName)
	}
	now := time.Now()
	requestID := fmt.Sprintf("shutdown-%d@%s", now.UnixMilli(), req.Recipient)
	payload := model.NewShutdownRequest(requestID, teamstore.LeadAgentName, req.Content, mailbox.NowISO(now))
	if err := s.orch.Mail().SendShutdownRequest(teamName, req.Recipient, payload, now); err != nil {
		return model.SendMessageResult{}, err
	}
	return model.SendMessageResult{
		Success:   true,
		Message:   fmt.Sprintf("Shutdown request sent to %s", req.Recipient),
		RequestID: &requestID,
		Target:    &req.Recipient,
	}, nil
}

func (s *Surface) sendShutdownResponse(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	sender := req.Sender
	if sender == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("shutdown response sender must not be empty")
	}
	if req.Approve != nil && *req.Approve {
		cfg, err := s.orch.Store().ReadConfig(teamName)
		if err != nil {
			return model.SendMessageResult{}, err
		}
		paneID := ""
		processHandle := ""
		backendType := "tmux"
		for _, m := range cfg.Members {
			if m.Teammate != nil && m.Teammate.Name == sender {
				paneID = m.Teammate.TmuxPaneID
				processHandle = m.Teammate.ProcessHandle
				if processHandle == "" {
					processHandle = m.Teammate.TmuxPaneID
				}
				backendType = m.Teammate.BackendType
				break
			}
		}
		now := time.Now()
		payload := model.NewShutdownApproved(req.RequestID, sender, mailbox.NowISO(now), paneID, backendType, processHandle)
		if err := s.orch.Mail().SendShutdownApproved(teamName, teamstore.LeadAgentName, payload, now); err != nil {
			return model.SendMessageResult{}, err
		}
		return model.SendMessageResult{
			Success: true,
			Message: fmt.Sprintf("Shutdown approved for request %s", req.RequestID),
		}, nil
	}

	content := req.Content
	if content == "" {
		content = "Shutdown rejected"
	}
	if err := s.orch.Mail().SendPlainMessage(
		teamName, teamstore.LeadAgentName, sender, content, "shutdown_rejected", "", time.Now()); err != nil {
		return model.SendMessageResult{}, err
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("Shutdown rejected for request %s", req.RequestID),
	}, nil
}

func (s *Surface) sendPlanApprovalResponse(teamName string, req SendMessageRequest) (model.SendMessageResult, error) {
	if req.Recipient == "" {
		return model.SendMessageResult{}, apperr.InvalidArgument("plan approval recipient must not be empty")
	}
	cfg, err := s.orch.Store().ReadConfig(teamName)
	if err != nil {
		return model.SendMessageResult{}, err
	}
	if !hasMember(cfg, req.Recipient) {
		return model.SendMessageResult{}, apperr.InvalidArgument(
			"recipient %q is not a member of team %q", req.Recipient, teamName)
	}
	sender := req.Sender
	if sender == "" {
		sender = teamstore.LeadAgentName
	}
	approved := req.Approve != nil && *req.Approve
	if approved {
		if err := s.orch.Mail().SendPlainMessage(
			teamName, req.Recipient, sender,
			`{"type":"plan_approval","approved":true}`, "plan_approved", "", time.Now()); err != nil {
			return model.SendMessageResult{}, err
		}
	} else {
		content := req.Content
		if content == "" {
			content = "Plan rejected"
		}
		if err := s.orch.Mail().SendPlainMessage(
			teamName, req.Recipient, sender, content, "plan_rejected", "", time.Now()); err != nil {
			return model.SendMessageResult{}, err
		}
	}
	verb := "rejected"
	if approved {
		verb = "approved"
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("Plan %s for %s", verb, req.Recipient),
	}, nil
}
