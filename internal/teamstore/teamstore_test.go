package teamstore

import (
	"testing"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid simple", "alpha", false},
		{"valid with dash and underscore", "alpha-team_1", false},
		{"empty", "", true},
		{"too long", string(make([]byte, 65)), true},
		{"contains slash", "alpha/beta", true},
		{"contains space", "alpha beta", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

func TestCreateTeam_WritesLeadMember(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	result, err := s.CreateTeam("alpha", "sess-1", "a test team", 1000)
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if result.LeadAgentID != "team-lead@alpha" {
		t.Errorf("LeadAgentID = %q, want %q", result.LeadAgentID, "team-lead@alpha")
	}

	cfg, err := s.ReadConfig("alpha")
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if len(cfg.Members) != 1 || !cfg.Members[0].IsLead() {
		t.Fatalf("expected exactly one lead member, got %+v", cfg.Members)
	}
}

func TestCreateTeam_FailsIfExists(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	if _, err := s.CreateTeam("alpha", "sess-1", "", 1000); err != nil {
		t.Fatalf("first CreateTeam: %v", err)
	}
	_, err := s.CreateTeam("alpha", "sess-2", "", 2000)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second CreateTeam error = %v, want KindConflict", err)
	}
}

func TestAddMember_RejectsDuplicateNameAndSecondLead(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	if _, err := s.CreateTeam("alpha", "sess-1", "", 1000); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}

	bob := model.Member{Teammate: &model.TeammateMember{
		AgentID: "bob@alpha", Name: "bob", AgentType: "codex", Model: "gpt",
		Prompt: "do work", Color: "blue", JoinedAt: 1001, TmuxPaneID: "%1", BackendType: "codex",
	}}
	if err := s.AddMember("alpha", bob); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}

	if err := s.AddMember("alpha", bob); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate AddMember error = %v, want KindConflict", err)
	}

	secondLead := model.Member{Lead: &model.LeadMember{AgentID: "team-lead2@alpha", Name: "team-lead", AgentType: "team-lead", JoinedAt: 1002}}
	if err := s.AddMember("alpha", secondLead); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("second lead AddMember error = %v, want KindConflict", err)
	}
}

func TestDeleteTeam_FailsWithTeammatesRemaining(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	if _, err := s.CreateTeam("alpha", "sess-1", "", 1000); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	bob := model.Member{Teammate: &model.TeammateMember{
		AgentID: "bob@alpha", Name: "bob", AgentType: "codex", Model: "gpt",
		Prompt: "work", Color: "blue", JoinedAt: 1001, TmuxPaneID: "%1", BackendType: "codex",
	}}
	if err := s.AddMember("alpha", bob); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	_, err := s.DeleteTeam("alpha")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("DeleteTeam with teammates error = %v, want KindConflict", err)
	}

	if err := s.RemoveMember("alpha", "bob"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, err := s.DeleteTeam("alpha"); err != nil {
		t.Errorf("DeleteTeam after removing teammates: %v", err)
	}
	if s.TeamExists("alpha") {
		t.Errorf("team should no longer exist")
	}
}

func TestRemoveMember_CannotRemoveLead(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	if _, err := s.CreateTeam("alpha", "sess-1", "", 1000); err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if err := s.RemoveMember("alpha", LeadAgentName); !apperr.Is(err, apperr.KindInvalidArgument) {
		t.Errorf("RemoveMember(lead) error = %v, want KindInvalidArgument", err)
	}
}
