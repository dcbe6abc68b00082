package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hikarock/kanban-board-api/internal/dto"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestProjectHandler_CreateProject_MembershipScoped(t *testing.T) {
	env := setupTestEnv(t)
	member := env.createUser(t, "member", models.UserRoleMember)
	outsider := env.createUser(t, "outsider", models.UserRoleMember)
	team := env.createTeam(t, "platform")
	env.addMember(t, team.ID, member.ID, models.TeamRoleMember)

	created := env.do(t, http.MethodPost, "/api/projects", env.bearer(t, member), map[string]interface{}{
		"name":    "migration",
		"team_id": team.ID,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var project dto.ProjectDTO
	decodeJSON(t, created, &project)
	require.Equal(t, "migration", project.Name)
	require.Equal(t, team.ID, project.TeamID)
	require.Equal(t, member.ID, project.CreatorID)

	denied := env.do(t, http.MethodPost, "/api/projects", env.bearer(t, outsider), map[string]interface{}{
		"name":    "sneaky",
		"team_id": team.ID,
	})
	require.Equal(t, http.StatusForbidden, denied.Code)
}

func TestProjectHandler_CreateProject_UnknownTeam(t *testing.T) {
	env := setupTestEnv(t)
	member := env.createUser(t, "member", models.UserRoleMember)

	w := env.do(t, http.MethodPost, "/api/projects", env.bearer(t, member), map[string]interface{}{
		"name":    "orphan",
		"team_id": 999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_ListProjects_ScopedToMemberTeams(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.createUser(t, "admin", models.UserRoleAdmin)
	member := env.createUser(t, "member", models.UserRoleMember)
	mine := env.createTeam(t, "platform")
	other := env.createTeam(t, "data")
	env.addMember(t, mine.ID, member.ID, models.TeamRoleMember)
	visible := env.createProject(t, "migration", mine.ID, admin.ID)
	env.createProject(t, "warehouse", other.ID, admin.ID)

	memberView := env.do(t, http.MethodGet, "/api/projects", env.bearer(t, member), nil)
	require.Equal(t, http.StatusOK, memberView.Code)
	var memberProjects []dto.ProjectDTO
	decodeJSON(t, memberView, &memberProjects)
	require.Len(t, memberProjects, 1)
	require.Equal(t, visible.ID, memberProjects[0].ID)

	adminView := env.do(t, http.MethodGet, "/api/projects", env.bearer(t, admin), nil)
	require.Equal(t, http.StatusOK, adminView.Code)
	var adminProjects []dto.ProjectDTO
	decodeJSON(t, adminView, &adminProjects)
	require.Len(t, adminProjects, 2)
}

func TestProjectHandler_GetProject_IncludesTasks(t *testing.T) {
	env := setupTestEnv(t)
	member := env.createUser(t, "member", models.UserRoleMember)
	team := env.createTeam(t, "platform")
	env.addMember(t, team.ID, member.ID, models.TeamRoleMember)
	project := env.createProject(t, "migration", team.ID, member.ID)
	env.createTask(t, "write plan", project.ID, nil)
	env.createTask(t, "review plan", project.ID, nil)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID), env.bearer(t, member), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectWithTasksDTO
	decodeJSON(t, w, &response)
	require.Equal(t, project.ID, response.ID)
	require.Len(t, response.Tasks, 2)
}

func TestProjectHandler_GetProject_OutsiderForbidden(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.createUser(t, "admin", models.UserRoleAdmin)
	outsider := env.createUser(t, "outsider", models.UserRoleMember)
	team := env.createTeam(t, "platform")
	project := env.createProject(t, "migration", team.ID, admin.ID)

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID), env.bearer(t, outsider), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectHandler_UpdateProject(t *testing.T) {
	env := setupTestEnv(t)
	member := env.createUser(t, "member", models.UserRoleMember)
	team := env.createTeam(t, "platform")
	env.addMember(t, team.ID, member.ID, models.TeamRoleMember)
	project := env.createProject(t, "migration", team.ID, member.ID)

	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/projects/%d", project.ID), env.bearer(t, member), map[string]string{
		"name":        "migration v2",
		"description": "second attempt",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProjectDTO
	decodeJSON(t, w, &response)
	require.Equal(t, "migration v2", response.Name)
	require.Equal(t, "second attempt", response.Description)
}

func TestProjectHandler_DeleteProject_RemovesTasks(t *testing.T) {
	env := setupTestEnv(t)
	member := env.createUser(t, "member", models.UserRoleMember)
	team := env.createTeam(t, "platform")
	env.addMember(t, team.ID, member.ID, models.TeamRoleMember)
	project := env.createProject(t, "migration", team.ID, member.ID)
	env.createTask(t, "write plan", project.ID, nil)

	w := env.do(t, http.MethodDelete, fmt.Sprintf("/api/projects/%d", project.ID), env.bearer(t, member), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var taskCount int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&taskCount).Error)
	require.Zero(t, taskCount)

	gone := env.do(t, http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID), env.bearer(t, member), nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
}
