// Package orchestrator implements the spawn pipeline and the one-shot
// relay: validating spawn requests, registering the member, seeding its
// mailbox with the initial prompt, launching the backend process, and —
// for non-interactive backends — waiting in the background for completion
// and delivering the captured output to the lead's mailbox.
package orchestrator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/backend"
	"github.com/agentteams/teamctl/internal/config"
	"github.com/agentteams/teamctl/internal/mailbox"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/paths"
	"github.com/agentteams/teamctl/internal/taskgraph"
	"github.com/agentteams/teamctl/internal/teamstore"
)

// Orchestrator wires the team store, mailboxes, task graph, and backend
// registry into the spawn/relay pipeline.
type Orchestrator struct {
	store    *teamstore.Store
	mail     *mailbox.Mailbox
	graph    *taskgraph.Graph
	registry *backend.Registry
	layout   paths.Layout

	relayPoll    time.Duration
	relayTimeout time.Duration
	maxResultLen int

	logf func(format string, args ...interface{})
}

// New returns an Orchestrator rooted at settings.RootDir(), with the relay
// bounds taken from settings.
func New(settings config.Settings, reg *backend.Registry) *Orchestrator {
	root := settings.RootDir()
	return &Orchestrator{
		store:        teamstore.New(root),
		mail:         mailbox.New(root),
		graph:        taskgraph.New(root),
		registry:     reg,
		layout:       paths.NewLayout(root),
		relayPoll:    settings.RelayPollInterval(),
		relayTimeout: settings.RelayTimeout(),
		maxResultLen: settings.Relay.MaxResultLen,
		logf: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "orchestrator: "+format+"\n", args...)
		},
	}
}

// Store exposes the underlying team store for the tool surface.
func (o *Orchestrator) Store() *teamstore.Store { return o.store }

// Mail exposes the underlying mailbox for the tool surface.
func (o *Orchestrator) Mail() *mailbox.Mailbox { return o.mail }

// Graph exposes the underlying task graph for the tool surface.
func (o *Orchestrator) Graph() *taskgraph.Graph { return o.graph }

// Registry exposes the backend registry for the tool surface.
func (o *Orchestrator) Registry() *backend.Registry { return o.registry }

// SpawnOptions carries the optional parameters of SpawnTeammate.
type SpawnOptions struct {
	Model            string
	Backend          string
	AgentType        string
	PlanModeRequired bool
	Cwd              string
	LeadSessionID    string
}

// AssignColor returns the palette color for the next teammate spawned into
// team: palette index = current teammate count mod palette size.
func (o *Orchestrator) AssignColor(team string) (string, error) {
	cfg, err := o.store.ReadConfig(team)
	if err != nil {
		return "", err
	}
	count := 0
	for _, m := range cfg.Members {
		if !m.IsLead() {
			count++
		}
	}
	return model.ColorPalette[count%len(model.ColorPalette)], nil
}

// SpawnTeammate validates the request, registers the member, seeds its
// mailbox with the initial prompt, spawns the backend process, and records
// the process handle. On spawn failure the just-added member is removed so
// the config stays consistent. Non-interactive backends get a background
// relay task that delivers their final output to the lead.
func (o *Orchestrator) SpawnTeammate(team, name, prompt string, opts SpawnOptions) (model.SpawnResult, error) {
	var b backend.Backend
	var err error
	if opts.Backend != "" {
		b, err = o.registry.Get(opts.Backend)
	} else {
		var defName string
		defName, err = o.registry.DefaultBackend()
		if err == nil {
			b, err = o.registry.Get(defName)
		}
	}
	if err != nil {
		return model.SpawnResult{}, err
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = "balanced"
	}
	resolvedModel, err := b.ResolveModel(modelName)
	if err != nil {
		return model.SpawnResult{}, err
	}

	if err := teamstore.ValidateName(name); err != nil {
		return model.SpawnResult{}, err
	}
	if name == teamstore.LeadAgentName {
		return model.SpawnResult{}, apperr.Conflict("agent name %q is reserved", teamstore.LeadAgentName)
	}

	color, err := o.AssignColor(team)
	if err != nil {
		return model.SpawnResult{}, err
	}

	agentType := opts.AgentType
	if agentType == "" {
		agentType = "general-purpose"
	}
	cwd := opts.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	now := time.Now()
	nowMillis := now.UnixMilli()

	member := model.TeammateMember{
		AgentID:          name + "@" + team,
		Name:             name,
		AgentType:        agentType,
		Model:            resolvedModel,
		Prompt:           prompt,
		Color:            color,
		PlanModeRequired: opts.PlanModeRequired,
		JoinedAt:         nowMillis,
		Cwd:              cwd,
		BackendType:      b.Name(),
	}
	if err := o.store.AddMember(team, model.Member{Teammate: &member}); err != nil {
		return model.SpawnResult{}, err
	}

	if err := o.mail.EnsureInbox(team, name); err != nil {
		return model.SpawnResult{}, err
	}
	if err := o.mail.SendPlainMessage(team, name, teamstore.LeadAgentName, prompt, "", "", now); err != nil {
		return model.SpawnResult{}, err
	}

	req := backend.SpawnRequest{
		AgentID:          member.AgentID,
		Name:             name,
		TeamName:         team,
		Prompt:           prompt,
		Model:            resolvedModel,
		AgentType:        agentType,
		Color:            color,
		Cwd:              cwd,
		LeadSessionID:    opts.LeadSessionID,
		PlanModeRequired: opts.PlanModeRequired,
	}
	resultPath := ""
	if !b.IsInteractive() && b.SupportsOutputFile() {
		resultPath = o.layout.RunResultPath(team, name, nowMillis)
		req.Extra = map[string]string{"output_last_message_path": resultPath}
	}

	spawned, err := b.Spawn(req)
	if err != nil {
		if rmErr := o.store.RemoveMember(team, name); rmErr != nil {
			o.logf("rollback of member %s after failed spawn: %v", name, rmErr)
		}
		return model.SpawnResult{}, err
	}

	member.ProcessHandle = spawned.ProcessHandle
	member.TmuxPaneID = spawned.ProcessHandle
	member.IsActive = true
	if err := o.store.UpdateMember(team, name, model.Member{Teammate: &member}); err != nil {
		return model.SpawnResult{}, err
	}

	if !b.IsInteractive() {
		if err := b.RetainPaneAfterExit(spawned.ProcessHandle); err != nil {
			o.logf("retain-after-exit for %s: %v", name, err)
		}
		go o.runRelay(relayJob{
			team:       team,
			agent:      name,
			color:      color,
			handle:     spawned.ProcessHandle,
			backend:    b,
			resultPath: resultPath,
		})
	}

	return model.SpawnResult{
		AgentID:  member.AgentID,
		Name:     name,
		TeamName: team,
		Message:  model.DefaultSpawnMessage,
	}, nil
}

// memberByName finds the teammate record for agentName, or nil.
func (o *Orchestrator) memberByName(team, agentName string) (*model.TeammateMember, error) {
	cfg, err := o.store.ReadConfig(team)
	if err != nil {
		return nil, err
	}
	for _, m := range cfg.Members {
		if m.Teammate != nil && m.Teammate.Name == agentName {
			return m.Teammate, nil
		}
	}
	return nil, nil
}

// resolveBackendType maps the legacy persisted "tmux" backend type onto
// "claude-code".
func resolveBackendType(backendType string) string {
	if backendType == "tmux" {
		return "claude-code"
	}
	return backendType
}

// ForceKillTeammate kills agentName's process, removes it from the team,
// and releases its tasks back to the pool.
func (o *Orchestrator) ForceKillTeammate(team, agentName string) error {
	member, err := o.memberByName(team, agentName)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.NotFound("teammate %q not found in team %q", agentName, team)
	}

	handle := member.ProcessHandle
	if handle == "" {
		handle = member.TmuxPaneID
	}
	if handle != "" {
		b, err := o.registry.Get(resolveBackendType(member.BackendType))
		if err == nil {
			if killErr := b.Kill(handle); killErr != nil {
				o.logf("killing %s: %v", agentName, killErr)
			}
		}
	}

	if err := o.store.RemoveMember(team, agentName); err != nil {
		return err
	}
	return o.graph.ResetOwnerTasks(team, agentName)
}

// ProcessShutdownApproved removes an agent whose shutdown request the lead
// approved, releasing its tasks. The process is expected to exit on its
// own after approval.
func (o *Orchestrator) ProcessShutdownApproved(team, agentName string) error {
	if agentName == teamstore.LeadAgentName {
		return apperr.Conflict("cannot process shutdown for %s", teamstore.LeadAgentName)
	}
	if err := o.store.RemoveMember(team, agentName); err != nil {
		return err
	}
	return o.graph.ResetOwnerTasks(team, agentName)
}

// HealthReport is the result of HealthCheck for one teammate.
type HealthReport struct {
	AgentName string `json:"agentName"`
	Alive     bool   `json:"alive"`
	Backend   string `json:"backend"`
	Detail    string `json:"detail"`
}

// HealthCheck reports whether agentName's process is still running.
func (o *Orchestrator) HealthCheck(team, agentName string) (HealthReport, error) {
	member, err := o.memberByName(team, agentName)
	if err != nil {
		return HealthReport{}, err
	}
	if member == nil {
		return HealthReport{}, apperr.NotFound("teammate %q not found in team %q", agentName, team)
	}
	backendType := resolveBackendType(member.BackendType)
	b, err := o.registry.Get(backendType)
	if err != nil {
		return HealthReport{}, err
	}
	handle := member.ProcessHandle
	if handle == "" {
		handle = member.TmuxPaneID
	}
	status := b.HealthCheck(handle)
	return HealthReport{
		AgentName: agentName,
		Alive:     status.Alive,
		Backend:   backendType,
		Detail:    status.Detail,
	}, nil
}

// relayJob carries everything the background relay needs; it deliberately
// holds no pointers into the spawn request so the triggering tool call can
// return immediately.
type relayJob struct {
	team       string
	agent      string
	color      string
	handle     string
	backend    backend.Backend
	resultPath string
}

// runRelay waits for a one-shot worker to finish, collects its output
// (result file first, pane capture as fallback), delivers it to the lead's
// mailbox, and reaps the retained pane. Failures are logged, never
// propagated.
func (o *Orchestrator) runRelay(job relayJob) {
	defer func() {
		if p := recover(); p != nil {
			o.logf("relay for %s panicked: %v", job.agent, p)
		}
	}()

	deadline := time.Now().Add(o.relayTimeout)

	// Phase A: wait for the result file, process death, or the deadline.
	timedOut := true
	for time.Now().Before(deadline) {
		if job.resultPath != "" {
			if data, err := os.ReadFile(job.resultPath); err == nil && len(strings.TrimSpace(string(data))) > 0 {
				timedOut = false
				break
			}
		}
		if !job.backend.HealthCheck(job.handle).Alive {
			timedOut = false
			break
		}
		time.Sleep(o.relayPoll)
	}

	// Phase B: collect, file first, pane capture second.
	text := ""
	if job.resultPath != "" {
		if data, err := os.ReadFile(job.resultPath); err == nil {
			text = strings.TrimSpace(string(data))
		}
	}
	if text == "" {
		captured, err := job.backend.Capture(job.handle, 0)
		if err != nil {
			o.logf("relay capture for %s: %v", job.agent, err)
		} else {
			text = strings.TrimSpace(StripANSI(captured))
		}
	}
	if len(text) > o.maxResultLen {
		text = text[:o.maxResultLen] + "\n[truncated]"
	}

	// Phase C: deliver — unless the worker was removed while we waited.
	member, err := o.memberByName(job.team, job.agent)
	if err != nil || member == nil {
		o.logf("relay for %s: worker no longer a member, dropping output", job.agent)
	} else {
		now := time.Now()
		switch {
		case text == "" && timedOut:
			msg := fmt.Sprintf("%s timed out before producing output.", job.agent)
			if err := o.mail.SendPlainMessage(job.team, teamstore.LeadAgentName, job.agent, msg, "teammate_timeout", job.color, now); err != nil {
				o.logf("relay timeout delivery for %s: %v", job.agent, err)
			}
		case text == "":
			msg := fmt.Sprintf("%s finished, but no output was captured.", job.agent)
			if err := o.mail.SendPlainMessage(job.team, teamstore.LeadAgentName, job.agent, msg, "teammate_no_output", job.color, now); err != nil {
				o.logf("relay no-output delivery for %s: %v", job.agent, err)
			}
		default:
			if err := o.mail.SendPlainMessage(job.team, teamstore.LeadAgentName, job.agent, text, "teammate_result", job.color, now); err != nil {
				o.logf("relay delivery for %s: %v", job.agent, err)
			}
		}
	}

	// Phase D: cleanup. Errors swallowed; the pane must be reaped either way.
	if job.resultPath != "" {
		if err := os.Remove(job.resultPath); err != nil && !os.IsNotExist(err) {
			o.logf("relay cleanup of %s: %v", job.resultPath, err)
		}
	}
	if err := job.backend.Kill(job.handle); err != nil {
		o.logf("relay kill of %s: %v", job.handle, err)
	}
}
