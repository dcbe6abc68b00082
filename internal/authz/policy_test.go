package authz

import (
	"testing"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeTaskRef struct {
	teamID     uint64
	assigneeID *uint64
}

// fakeWorld is an in-memory MembershipDirectory and ResourceResolver.
type fakeWorld struct {
	memberships map[uint64]map[uint64]models.TeamRole // userID -> teamID -> role
	projects    map[uint64]uint64                     // projectID -> teamID
	tasks       map[uint64]fakeTaskRef
}

func (w *fakeWorld) RoleInTeam(userID, teamID uint64) (*models.TeamRole, error) {
	role, ok := w.memberships[userID][teamID]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (w *fakeWorld) TeamsFor(userID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	for teamID, role := range w.memberships[userID] {
		members = append(members, models.TeamMember{TeamID: teamID, UserID: userID, Role: role})
	}
	return members, nil
}

func (w *fakeWorld) TeamForProject(projectID uint64) (uint64, error) {
	teamID, ok := w.projects[projectID]
	if !ok {
		return 0, ErrResourceNotFound
	}
	return teamID, nil
}

func (w *fakeWorld) TaskRef(taskID uint64) (uint64, *uint64, error) {
	ref, ok := w.tasks[taskID]
	if !ok {
		return 0, nil, ErrResourceNotFound
	}
	return ref.teamID, ref.assigneeID, nil
}

func uintPtr(v uint64) *uint64 { return &v }

func TestEngine_Authorize(t *testing.T) {
	// Team 1: member 10 (assignee of task 100), member 11.
	// User 12 belongs to no team. Task 101 is unassigned.
	world := &fakeWorld{
		memberships: map[uint64]map[uint64]models.TeamRole{
			10: {1: models.TeamRoleMember},
			11: {1: models.TeamRoleLead},
		},
		projects: map[uint64]uint64{
			50: 1,
		},
		tasks: map[uint64]fakeTaskRef{
			100: {teamID: 1, assigneeID: uintPtr(10)},
			101: {teamID: 1, assigneeID: nil},
		},
	}
	engine := NewEngine(world, world)

	admin := auth.Principal{UserID: 1, Role: models.UserRoleAdmin}
	member := auth.Principal{UserID: 10, Role: models.UserRoleMember}
	teammate := auth.Principal{UserID: 11, Role: models.UserRoleMember}
	outsider := auth.Principal{UserID: 12, Role: models.UserRoleMember}

	tests := []struct {
		name      string
		principal auth.Principal
		action    Action
		resource  Resource
		wantErr   error
	}{
		// Global admins bypass every scope.
		{name: "admin creates team", principal: admin, action: ActionTeamCreate, resource: Resource{}},
		{name: "admin deletes task", principal: admin, action: ActionTaskDelete, resource: TaskResource(100)},
		{name: "admin views task in any team", principal: admin, action: ActionTaskView, resource: TaskResource(101)},

		// Team management is admin-only.
		{name: "member creates team", principal: member, action: ActionTeamCreate, resource: Resource{}, wantErr: ErrAccessDenied},
		{name: "member updates team", principal: member, action: ActionTeamUpdate, resource: TeamResource(1), wantErr: ErrAccessDenied},
		{name: "member adds member", principal: member, action: ActionTeamMemberAdd, resource: TeamResource(1), wantErr: ErrAccessDenied},

		// Membership grants team-scoped actions.
		{name: "member views own team", principal: member, action: ActionTeamView, resource: TeamResource(1)},
		{name: "outsider views team", principal: outsider, action: ActionTeamView, resource: TeamResource(1), wantErr: ErrAccessDenied},
		{name: "member creates project", principal: member, action: ActionProjectCreate, resource: TeamResource(1)},
		{name: "outsider creates project", principal: outsider, action: ActionProjectCreate, resource: TeamResource(1), wantErr: ErrAccessDenied},
		{name: "member views project", principal: member, action: ActionProjectView, resource: ProjectResource(50)},
		{name: "member creates task", principal: teammate, action: ActionTaskCreate, resource: ProjectResource(50)},

		// By-ID task access is narrowed to the assignee.
		{name: "assignee views task", principal: member, action: ActionTaskView, resource: TaskResource(100)},
		{name: "assignee updates task", principal: member, action: ActionTaskUpdate, resource: TaskResource(100)},
		{name: "teammate views task", principal: teammate, action: ActionTaskView, resource: TaskResource(100), wantErr: ErrAccessDenied},
		{name: "teammate updates task", principal: teammate, action: ActionTaskUpdate, resource: TaskResource(100), wantErr: ErrAccessDenied},
		{name: "unassigned task view", principal: member, action: ActionTaskView, resource: TaskResource(101), wantErr: ErrAccessDenied},

		// Task deletion is admin-only, even for the assignee.
		{name: "assignee deletes task", principal: member, action: ActionTaskDelete, resource: TaskResource(100), wantErr: ErrAccessDenied},

		// Missing resources surface as not-found, not denial.
		{name: "unknown project", principal: member, action: ActionProjectView, resource: ProjectResource(999), wantErr: ErrResourceNotFound},
		{name: "unknown task", principal: member, action: ActionTaskView, resource: TaskResource(999), wantErr: ErrResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Authorize(tt.principal, tt.action, tt.resource)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEngine_UnknownActionDenied(t *testing.T) {
	world := &fakeWorld{}
	engine := NewEngine(world, world)

	member := auth.Principal{UserID: 10, Role: models.UserRoleMember}
	err := engine.Authorize(member, Action("team.transfer"), TeamResource(1))
	require.ErrorIs(t, err, ErrAccessDenied)
}
