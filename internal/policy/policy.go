// Package policy holds the role-based access rules as pure functions.
// Every façade entry point consults this package instead of re-deriving
// role logic ad hoc.
package policy

import "github.com/spec-kit/issue-tracker/internal/domain"

// Action enumerates role-gated operations.
type Action string

const (
	ActionViewIssue         Action = "issue.view"
	ActionCreateIssue       Action = "issue.create"
	ActionUpdateIssue       Action = "issue.update"
	ActionDeleteIssue       Action = "issue.delete"
	ActionChangeIssueStatus Action = "issue.change_status"
	ActionViewProject       Action = "project.view"
	ActionCreateProject     Action = "project.create"
	ActionUpdateProject     Action = "project.update"
	ActionCommentIssue      Action = "issue.comment"
	ActionAttachFile        Action = "issue.attach"
	ActionViewTeam          Action = "team.view"
	ActionManageTeam        Action = "team.manage"
	ActionViewSettings      Action = "settings.view"
)

var grants = map[domain.Role]map[Action]struct{}{
	domain.RoleClient: actionSet(
		ActionViewIssue, ActionCreateIssue, ActionUpdateIssue,
		ActionViewProject, ActionCommentIssue, ActionAttachFile,
	),
	domain.RoleTeam: actionSet(
		ActionViewIssue, ActionCreateIssue, ActionUpdateIssue, ActionChangeIssueStatus,
		ActionViewProject, ActionCreateProject, ActionUpdateProject,
		ActionCommentIssue, ActionAttachFile,
		ActionViewTeam, ActionViewSettings,
	),
	domain.RoleAdmin: actionSet(
		ActionViewIssue, ActionCreateIssue, ActionUpdateIssue, ActionDeleteIssue, ActionChangeIssueStatus,
		ActionViewProject, ActionCreateProject, ActionUpdateProject,
		ActionCommentIssue, ActionAttachFile,
		ActionViewTeam, ActionManageTeam, ActionViewSettings,
	),
}

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Can reports whether the role is permitted to perform the action.
// Unknown roles are denied everything.
func Can(role domain.Role, action Action) bool {
	actions, ok := grants[role]
	if !ok {
		return false
	}
	_, allowed := actions[action]
	return allowed
}

// CanViewIssue reports record-level visibility: clients see only
// issues they own (reported), team and admin see all.
func CanViewIssue(principal *domain.User, issue *domain.Issue) bool {
	if principal == nil || issue == nil {
		return false
	}
	if principal.Role == domain.RoleClient {
		return issue.UserID == principal.ID
	}
	return Can(principal.Role, ActionViewIssue)
}

// CanViewProject reports record-level visibility: clients see only
// projects they own, team and admin see all.
func CanViewProject(principal *domain.User, project *domain.Project) bool {
	if principal == nil || project == nil {
		return false
	}
	if principal.Role == domain.RoleClient {
		return project.ClientID == principal.ID
	}
	return Can(principal.Role, ActionViewProject)
}
