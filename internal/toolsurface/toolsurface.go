// Package toolsurface exposes the orchestration operations as remotely
// invocable tools with progressive gating: bootstrap tools are always
// visible, team tools appear once the session has an active team, and
// teammate tools appear once the first worker has been spawned. The
// dispatch is typed Go methods on Surface; ToolDescriptors carry only the
// name, tier, and description the RPC framework needs to list them.
package toolsurface

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/mailbox"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/orchestrator"
	"github.com/agentteams/teamctl/internal/taskgraph"
	"github.com/agentteams/teamctl/internal/teamstore"
)

// Session is the per-connection state every gating decision reads. One
// team per session: a second team_create is rejected until the first team
// is deleted.
type Session struct {
	ID           string
	ActiveTeam   string
	HasTeammates bool
}

// NewSession returns a Session with a fresh lifespan id.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Surface binds a session to the orchestrator and exposes every tool
// operation as a method.
type Surface struct {
	orch *orchestrator.Orchestrator
	sess *Session

	pollInterval time.Duration
}

// New returns a Surface for sess backed by orch.
func New(orch *orchestrator.Orchestrator, sess *Session) *Surface {
	return &Surface{orch: orch, sess: sess, pollInterval: 500 * time.Millisecond}
}

// Session returns the surface's session state.
func (s *Surface) Session() *Session { return s.sess }

// ---------------------------------------------------------------------------
// bootstrap tier
// ---------------------------------------------------------------------------

// TeamCreate creates a team and makes it the session's active team.
func (s *Surface) TeamCreate(teamName, description string) (model.TeamCreateResult, error) {
	if s.sess.ActiveTeam != "" {
		return model.TeamCreateResult{}, apperr.Conflict(
			"session already has active team %q; one team per session", s.sess.ActiveTeam)
	}
	result, err := s.orch.Store().CreateTeam(teamName, s.sess.ID, description, time.Now().UnixMilli())
	if err != nil {
		return model.TeamCreateResult{}, err
	}
	s.sess.ActiveTeam = teamName
	return result, nil
}

// TeamDelete deletes a team and clears the session's gating state.
func (s *Surface) TeamDelete(teamName string) (model.TeamDeleteResult, error) {
	result, err := s.orch.Store().DeleteTeam(teamName)
	if err != nil {
		return model.TeamDeleteResult{}, err
	}
	s.sess.ActiveTeam = ""
	s.sess.HasTeammates = false
	return result, nil
}

// ReadConfig returns a team's parsed config.
func (s *Surface) ReadConfig(teamName string) (model.TeamConfig, error) {
	return s.orch.Store().ReadConfig(teamName)
}

// ListBackends describes every available backend.
func (s *Surface) ListBackends() []model.BackendInfo {
	return s.orch.Registry().Infos()
}

// ---------------------------------------------------------------------------
// team tier
// ---------------------------------------------------------------------------

func (s *Surface) requireTeam() error {
	if s.sess.ActiveTeam == "" {
		return apperr.InvalidArgument("no active team in this session")
	}
	return nil
}

// SpawnTeammate launches a worker into the session's active team and
// unlocks the teammate tier on first success.
func (s *Surface) SpawnTeammate(teamName, name, prompt string, opts orchestrator.SpawnOptions) (model.SpawnResult, error) {
	if err := s.requireTeam(); err != nil {
		return model.SpawnResult{}, err
	}
	if opts.LeadSessionID == "" {
		opts.LeadSessionID = s.sess.ID
	}
	result, err := s.orch.SpawnTeammate(teamName, name, prompt, opts)
	if err != nil {
		return model.SpawnResult{}, err
	}
	s.sess.HasTeammates = true
	return result, nil
}

// TaskCreate adds a pending task to the team's shared graph.
func (s *Surface) TaskCreate(teamName, subject, description, activeForm string, metadata map[string]model.MetadataValue) (model.TaskFile, error) {
	if !s.orch.Store().TeamExists(teamName) {
		return model.TaskFile{}, apperr.NotFound("team %q does not exist", teamName)
	}
	return s.orch.Graph().CreateTask(teamName, subject, description, activeForm, metadata)
}

// TaskUpdate applies an update to one task. Assigning an owner also
// delivers a task_assignment payload to that agent's mailbox.
func (s *Surface) TaskUpdate(teamName, taskID string, req taskgraph.UpdateRequest) (model.TaskFile, error) {
	task, err := s.orch.Graph().UpdateTask(teamName, taskID, req)
	if err != nil {
		return model.TaskFile{}, err
	}
	if req.Owner != nil && task.Owner != nil && task.Status != model.TaskDeleted {
		now := time.Now()
		payload := model.NewTaskAssignment(
			task.ID, task.Subject, task.Description, teamstore.LeadAgentName, mailbox.NowISO(now))
		if err := s.orch.Mail().SendTaskAssignment(teamName, *task.Owner, payload, now); err != nil {
			return model.TaskFile{}, err
		}
	}
	return task, nil
}

// TaskList returns the team's tasks sorted by integer id.
func (s *Surface) TaskList(teamName string) ([]model.TaskFile, error) {
	return s.orch.Graph().ListTasks(teamName)
}

// TaskGet returns one task by id.
func (s *Surface) TaskGet(teamName, taskID string) (model.TaskFile, error) {
	return s.orch.Graph().GetTask(teamName, taskID)
}

// ReadInbox returns an agent's mailbox contents, optionally unread-only
// and optionally marking the returned records as read.
func (s *Surface) ReadInbox(teamName, agentName string, unreadOnly, markAsRead bool) ([]model.InboxMessage, error) {
	return s.orch.Mail().ReadInbox(teamName, agentName, unreadOnly, markAsRead)
}

// ---------------------------------------------------------------------------
// teammate tier
// ---------------------------------------------------------------------------

// PollInbox returns unread messages, sleeping in cooperative increments
// until some arrive or timeout elapses. Returns an empty list on expiry.
func (s *Surface) PollInbox(teamName, agentName string, timeout time.Duration) ([]model.InboxMessage, error) {
	msgs, err := s.orch.Mail().ReadInbox(teamName, agentName, true, true)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return msgs, nil
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(s.pollInterval)
		msgs, err = s.orch.Mail().ReadInbox(teamName, agentName, true, true)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			return msgs, nil
		}
	}
	return []model.InboxMessage{}, nil
}

// ForceKillTeammate kills a worker and removes it from the team.
func (s *Surface) ForceKillTeammate(teamName, agentName string) (model.SendMessageResult, error) {
	if err := s.orch.ForceKillTeammate(teamName, agentName); err != nil {
		return model.SendMessageResult{}, err
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("%s has been stopped.", agentName),
	}, nil
}

// ProcessShutdownApproved removes a worker whose shutdown the lead
// approved.
func (s *Surface) ProcessShutdownApproved(teamName, agentName string) (model.SendMessageResult, error) {
	if err := s.orch.ProcessShutdownApproved(teamName, agentName); err != nil {
		return model.SendMessageResult{}, err
	}
	return model.SendMessageResult{
		Success: true,
		Message: fmt.Sprintf("%s removed from team.", agentName),
	}, nil
}

// HealthCheck reports a worker's process liveness.
func (s *Surface) HealthCheck(teamName, agentName string) (orchestrator.HealthReport, error) {
	return s.orch.HealthCheck(teamName, agentName)
}
