// Package teamstore manages the lifecycle of a team: creating its
// directories and initial config, adding and removing members, and
// deleting the team once every non-lead member is gone. Config files are
// rewritten atomically via a temp-file-plus-rename so concurrent readers
// never observe a partial config.
package teamstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
	"github.com/agentteams/teamctl/internal/paths"
)

// LeadAgentName is the reserved member name for the team lead; it cannot be
// used as a teammate's name.
const LeadAgentName = "team-lead"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName enforces the team/agent name wire-format invariant: 1-64
// characters of letters, digits, underscore, or hyphen.
func ValidateName(name string) error {
	if name == "" || len(name) > 64 {
		return apperr.InvalidArgument("name must be 1-64 characters, got %d", len(name))
	}
	if !nameRe.MatchString(name) {
		return apperr.InvalidArgument("name %q must match [A-Za-z0-9_-]+", name)
	}
	return nil
}

// Store is a path-rooted handle onto every team's on-disk state.
type Store struct {
	layout paths.Layout
}

// New returns a Store rooted at root.
func New(root string) *Store {
	return &Store{layout: paths.NewLayout(root)}
}

// CreateTeam validates name, creates its directories, and writes an initial
// config with a single lead member. Fails if the team directory already
// exists.
func (s *Store) CreateTeam(name, sessionID, description string, now int64) (model.TeamCreateResult, error) {
	if err := ValidateName(name); err != nil {
		return model.TeamCreateResult{}, err
	}
	if s.layout.TeamExists(name) {
		return model.TeamCreateResult{}, apperr.Conflict("team %q already exists", name)
	}
	if err := s.layout.EnsureTeamDirs(name); err != nil {
		return model.TeamCreateResult{}, apperr.IOFailure("creating team directories", err)
	}

	leadAgentID := fmt.Sprintf("%s@%s", LeadAgentName, name)
	cfg := model.TeamConfig{
		Name:          name,
		Description:   description,
		CreatedAt:     now,
		LeadAgentID:   leadAgentID,
		LeadSessionID: sessionID,
		Members: []model.Member{
			{Lead: &model.LeadMember{
				AgentID:   leadAgentID,
				Name:      LeadAgentName,
				AgentType: "team-lead",
				Model:     "",
				JoinedAt:  now,
				Cwd:       s.layout.TeamDir(name),
			}},
		},
	}
	configPath := s.layout.ConfigPath(name)
	if err := writeConfigAtomic(configPath, cfg); err != nil {
		return model.TeamCreateResult{}, err
	}
	return model.TeamCreateResult{
		TeamName:     name,
		TeamFilePath: configPath,
		LeadAgentID:  leadAgentID,
	}, nil
}

// DeleteTeam removes a team's directories entirely. Fails if any non-lead
// member is still registered.
func (s *Store) DeleteTeam(name string) (model.TeamDeleteResult, error) {
	cfg, err := s.ReadConfig(name)
	if err != nil {
		return model.TeamDeleteResult{}, err
	}
	for _, m := range cfg.Members {
		if !m.IsLead() {
			return model.TeamDeleteResult{}, apperr.Conflict(
				"team %q still has teammate %q; remove all teammates before deleting", name, m.Name())
		}
	}
	if err := os.RemoveAll(s.layout.TeamDir(name)); err != nil {
		return model.TeamDeleteResult{}, apperr.IOFailure("removing team directory", err)
	}
	if err := os.RemoveAll(s.layout.TasksDir(name)); err != nil {
		return model.TeamDeleteResult{}, apperr.IOFailure("removing tasks directory", err)
	}
	return model.TeamDeleteResult{
		Success:  true,
		Message:  fmt.Sprintf("team %q deleted", name),
		TeamName: name,
	}, nil
}

// TeamExists reports whether name's config file is present.
func (s *Store) TeamExists(name string) bool {
	return s.layout.TeamExists(name)
}

// ReadConfig loads and parses a team's config.json.
func (s *Store) ReadConfig(name string) (model.TeamConfig, error) {
	data, err := os.ReadFile(s.layout.ConfigPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return model.TeamConfig{}, apperr.NotFound("team %q does not exist", name)
		}
		return model.TeamConfig{}, apperr.IOFailure("reading team config", err)
	}
	var cfg model.TeamConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.TeamConfig{}, apperr.IOFailure("parsing team config", err)
	}
	return cfg, nil
}

// AddMember appends member to name's config, rejecting a duplicate name or
// a second lead. The config write is atomic.
func (s *Store) AddMember(name string, member model.Member) error {
	if err := ValidateName(member.Name()); err != nil {
		return err
	}
	cfg, err := s.ReadConfig(name)
	if err != nil {
		return err
	}
	for _, m := range cfg.Members {
		if m.Name() == member.Name() {
			return apperr.Conflict("member %q already exists in team %q", member.Name(), name)
		}
	}
	if member.IsLead() {
		for _, m := range cfg.Members {
			if m.IsLead() {
				return apperr.Conflict("team %q already has a lead", name)
			}
		}
	}
	cfg.Members = append(cfg.Members, member)
	return writeConfigAtomic(s.layout.ConfigPath(name), cfg)
}

// RemoveMember deletes the member named agentName from name's config.
// Removing the lead is never allowed.
func (s *Store) RemoveMember(name, agentName string) error {
	if agentName == LeadAgentName {
		return apperr.InvalidArgument("cannot remove the team lead")
	}
	cfg, err := s.ReadConfig(name)
	if err != nil {
		return err
	}
	idx := -1
	for i, m := range cfg.Members {
		if m.Name() == agentName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.NotFound("member %q not found in team %q", agentName, name)
	}
	cfg.Members = append(cfg.Members[:idx], cfg.Members[idx+1:]...)
	return writeConfigAtomic(s.layout.ConfigPath(name), cfg)
}

// UpdateMember replaces the member named agentName in place, e.g. to record
// a spawn result's pane id. The config write is atomic.
func (s *Store) UpdateMember(name, agentName string, updated model.Member) error {
	cfg, err := s.ReadConfig(name)
	if err != nil {
		return err
	}
	idx := -1
	for i, m := range cfg.Members {
		if m.Name() == agentName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.NotFound("member %q not found in team %q", agentName, name)
	}
	cfg.Members[idx] = updated
	return writeConfigAtomic(s.layout.ConfigPath(name), cfg)
}

func writeConfigAtomic(path string, cfg model.TeamConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return apperr.IOFailure("encoding team config", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return apperr.IOFailure("creating temp config file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.IOFailure("writing temp config file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.IOFailure("closing temp config file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperr.IOFailure("renaming temp config file", err)
	}
	return nil
}
