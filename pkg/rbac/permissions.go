package rbac

// Permission tags granted by default to each role.
const (
	PermAll                 = "all"
	PermTeamManagement      = "team_management"
	PermCallMonitoring      = "call_monitoring"
	PermAnalytics           = "analytics"
	PermTeamView            = "team_view"
	PermCandidateManagement = "candidate_management"
	PermInterviews          = "interviews"
	PermCalls               = "calls"
	PermMessages            = "messages"
	PermTimeTracking        = "time_tracking"
	PermNotesOnly           = "notes_only"
)

// ReplacePermissions returns the permission set an entity holds after being
// moved to role. The previous set is discarded entirely: a role change is a
// full re-grant, so nothing from the old role survives unless the new role
// grants it too.
func (p *Policy) ReplacePermissions(_ []string, role Role) []string {
	return p.DefaultPermissions(role)
}
