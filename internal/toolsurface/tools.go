package toolsurface

// Tier is a gating group of tools. Bootstrap tools are always visible;
// team tools require an active team; teammate tools require at least one
// spawned worker.
type Tier string

const (
	TierBootstrap Tier = "bootstrap"
	TierTeam      Tier = "team"
	TierTeammate  Tier = "teammate"
)

// ToolDescriptor names one remotely invocable operation and its tier. The
// dispatch itself is the typed methods on Surface; descriptors exist so
// the hosting RPC framework can list what's callable.
type ToolDescriptor struct {
	Name        string
	Tier        Tier
	Description string
}

var catalog = []ToolDescriptor{
	{"team_create", TierBootstrap, "Create a team and make it this session's active team"},
	{"team_delete", TierBootstrap, "Delete a team with no remaining workers"},
	{"read_config", TierBootstrap, "Read a team's config"},
	{"list_backends", TierBootstrap, "List available agent CLI backends"},

	{"spawn_teammate", TierTeam, "Spawn a worker agent into the active team"},
	{"send_message", TierTeam, "Send a message, broadcast, or structured response"},
	{"task_create", TierTeam, "Create a task in the shared task graph"},
	{"task_update", TierTeam, "Update a task's status, owner, fields, or dependencies"},
	{"task_list", TierTeam, "List the team's tasks"},
	{"task_get", TierTeam, "Get one task by id"},
	{"read_inbox", TierTeam, "Read an agent's mailbox"},

	{"force_kill_teammate", TierTeammate, "Kill a worker and remove it from the team"},
	{"poll_inbox", TierTeammate, "Wait for unread mailbox messages"},
	{"process_shutdown_approved", TierTeammate, "Remove a worker whose shutdown was approved"},
	{"health_check", TierTeammate, "Check whether a worker's process is alive"},
}

// visible reports whether a tier's tools are listable for sess.
func visible(tier Tier, sess *Session) bool {
	switch tier {
	case TierBootstrap:
		return true
	case TierTeam:
		return sess.ActiveTeam != ""
	case TierTeammate:
		return sess.ActiveTeam != "" && sess.HasTeammates
	}
	return false
}

// Tools returns the descriptors currently visible to the surface's
// session, in catalog order.
func (s *Surface) Tools() []ToolDescriptor {
	var out []ToolDescriptor
	for _, d := range catalog {
		if visible(d.Tier, s.sess) {
			out = append(out, d)
		}
	}
	return out
}
