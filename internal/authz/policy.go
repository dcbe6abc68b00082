package authz

import (
	"errors"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/models"
)

var (
	ErrAccessDenied     = errors.New("access denied")
	ErrResourceNotFound = errors.New("resource not found")
)

// Action identifies an operation to be authorized.
type Action string

const (
	ActionTeamCreate       Action = "team.create"
	ActionTeamView         Action = "team.view"
	ActionTeamUpdate       Action = "team.update"
	ActionTeamDelete       Action = "team.delete"
	ActionTeamMemberAdd    Action = "team.member.add"
	ActionTeamMemberRemove Action = "team.member.remove"

	ActionProjectCreate Action = "project.create"
	ActionProjectView   Action = "project.view"
	ActionProjectUpdate Action = "project.update"
	ActionProjectDelete Action = "project.delete"

	ActionTaskCreate Action = "task.create"
	ActionTaskView   Action = "task.view"
	ActionTaskUpdate Action = "task.update"
	ActionTaskAssign Action = "task.assign"
	ActionTaskDelete Action = "task.delete"
)

// rule captures what a non-admin principal must satisfy for an action.
// Global admins bypass the table entirely.
type rule struct {
	adminOnly       bool
	needsMembership bool
	needsAssignee   bool
}

// The two-layer policy lives here: team membership grants creation and
// listing rights inside a team's projects, but by-ID access to a task is
// narrowed to its assignee.
var rules = map[Action]rule{
	ActionTeamCreate:       {adminOnly: true},
	ActionTeamUpdate:       {adminOnly: true},
	ActionTeamDelete:       {adminOnly: true},
	ActionTeamMemberAdd:    {adminOnly: true},
	ActionTeamMemberRemove: {adminOnly: true},
	ActionTeamView:         {needsMembership: true},

	ActionProjectCreate: {needsMembership: true},
	ActionProjectView:   {needsMembership: true},
	ActionProjectUpdate: {needsMembership: true},
	ActionProjectDelete: {needsMembership: true},

	ActionTaskCreate: {needsMembership: true},
	ActionTaskView:   {needsMembership: true, needsAssignee: true},
	ActionTaskUpdate: {needsMembership: true, needsAssignee: true},
	ActionTaskAssign: {needsMembership: true},
	ActionTaskDelete: {adminOnly: true},
}

// ResourceKind discriminates the target of an authorization check.
type ResourceKind int

const (
	KindNone ResourceKind = iota
	KindTeam
	KindProject
	KindTask
)

// Resource references the target of an action. Projects and tasks carry
// their owning team implicitly; the engine resolves it.
type Resource struct {
	Kind ResourceKind
	ID   uint64
}

func TeamResource(id uint64) Resource    { return Resource{Kind: KindTeam, ID: id} }
func ProjectResource(id uint64) Resource { return Resource{Kind: KindProject, ID: id} }
func TaskResource(id uint64) Resource    { return Resource{Kind: KindTask, ID: id} }

// MembershipDirectory resolves team membership. Implementations must read
// fresh rows on every call so membership changes are visible to the very
// next decision.
type MembershipDirectory interface {
	// RoleInTeam returns the role the user holds in the team, or nil when
	// the user is not a member.
	RoleInTeam(userID, teamID uint64) (*models.TeamRole, error)

	// TeamsFor returns every membership the user holds.
	TeamsFor(userID uint64) ([]models.TeamMember, error)
}

// ResourceResolver maps a project or task reference to its owning team.
type ResourceResolver interface {
	// TeamForProject returns the team owning the project, or
	// ErrResourceNotFound.
	TeamForProject(projectID uint64) (uint64, error)

	// TaskRef returns the task's owning team and its assignee (nil when
	// unassigned), or ErrResourceNotFound.
	TaskRef(taskID uint64) (teamID uint64, assigneeID *uint64, err error)
}

// Engine is the single authorization decision point. It holds no state
// between calls; every decision re-reads membership, so concurrent use
// needs no coordination.
type Engine struct {
	directory MembershipDirectory
	resolver  ResourceResolver
}

func NewEngine(directory MembershipDirectory, resolver ResourceResolver) *Engine {
	return &Engine{
		directory: directory,
		resolver:  resolver,
	}
}

// Authorize decides whether the principal may perform the action on the
// resource. It returns nil on allow, ErrAccessDenied on deny, and
// ErrResourceNotFound when a referenced project or task does not exist.
func (e *Engine) Authorize(principal auth.Principal, action Action, resource Resource) error {
	// Global admins bypass all team, project, and task scoping.
	if principal.IsAdmin() {
		return nil
	}

	r, ok := rules[action]
	if !ok || r.adminOnly {
		return ErrAccessDenied
	}

	teamID, assigneeID, err := e.resolve(resource)
	if err != nil {
		return err
	}

	if r.needsMembership {
		role, err := e.directory.RoleInTeam(principal.UserID, teamID)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrAccessDenied
		}
	}

	if r.needsAssignee {
		if assigneeID == nil || *assigneeID != principal.UserID {
			return ErrAccessDenied
		}
	}

	return nil
}

func (e *Engine) resolve(resource Resource) (teamID uint64, assigneeID *uint64, err error) {
	switch resource.Kind {
	case KindTeam:
		return resource.ID, nil, nil
	case KindProject:
		teamID, err = e.resolver.TeamForProject(resource.ID)
		return teamID, nil, err
	case KindTask:
		return e.resolver.TaskRef(resource.ID)
	default:
		return 0, nil, ErrAccessDenied
	}
}
