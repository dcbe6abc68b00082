package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hikarock/kanban-board-api/internal/dto"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/stretchr/testify/require"
)

// taskFixture is the common world for task tests: one team with two
// members, one project, one task assigned to the first member.
type taskFixture struct {
	env      *testEnv
	admin    *models.User
	assignee *models.User
	teammate *models.User
	outsider *models.User
	project  *models.Project
	task     *models.Task
}

func setupTaskFixture(t *testing.T) taskFixture {
	t.Helper()

	env := setupTestEnv(t)
	admin := env.createUser(t, "admin", models.UserRoleAdmin)
	assignee := env.createUser(t, "assignee", models.UserRoleMember)
	teammate := env.createUser(t, "teammate", models.UserRoleMember)
	outsider := env.createUser(t, "outsider", models.UserRoleMember)

	team := env.createTeam(t, "platform")
	env.addMember(t, team.ID, assignee.ID, models.TeamRoleMember)
	env.addMember(t, team.ID, teammate.ID, models.TeamRoleMember)

	project := env.createProject(t, "migration", team.ID, admin.ID)
	task := env.createTask(t, "write plan", project.ID, &assignee.ID)

	return taskFixture{
		env:      env,
		admin:    admin,
		assignee: assignee,
		teammate: teammate,
		outsider: outsider,
		project:  project,
		task:     task,
	}
}

func TestTaskHandler_CreateTask(t *testing.T) {
	f := setupTaskFixture(t)

	created := f.env.do(t, http.MethodPost, "/api/tasks", f.env.bearer(t, f.teammate), map[string]interface{}{
		"title":       "review plan",
		"project_id":  f.project.ID,
		"assignee_id": f.assignee.ID,
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var task dto.TaskDTO
	decodeJSON(t, created, &task)
	require.Equal(t, "review plan", task.Title)
	require.Equal(t, models.TaskStatusTodo, task.Status, "status defaults to todo")
	require.NotNil(t, task.AssigneeID)
	require.Equal(t, f.assignee.ID, *task.AssigneeID)
	require.NotNil(t, task.Assignee, "assignee is embedded in the response")
}

func TestTaskHandler_CreateTask_OutsiderForbidden(t *testing.T) {
	f := setupTaskFixture(t)

	w := f.env.do(t, http.MethodPost, "/api/tasks", f.env.bearer(t, f.outsider), map[string]interface{}{
		"title":      "sneaky",
		"project_id": f.project.ID,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_CreateTask_Validation(t *testing.T) {
	f := setupTaskFixture(t)
	token := f.env.bearer(t, f.teammate)

	missingProject := f.env.do(t, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title":      "orphan",
		"project_id": 999,
	})
	require.Equal(t, http.StatusNotFound, missingProject.Code)

	badStatus := f.env.do(t, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title":      "bad status",
		"project_id": f.project.ID,
		"status":     "blocked",
	})
	require.Equal(t, http.StatusBadRequest, badStatus.Code)

	unknownAssignee := f.env.do(t, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title":       "nobody's task",
		"project_id":  f.project.ID,
		"assignee_id": 999,
	})
	require.Equal(t, http.StatusNotFound, unknownAssignee.Code)
}

func TestTaskHandler_GetTask_AssigneeOnly(t *testing.T) {
	f := setupTaskFixture(t)
	path := fmt.Sprintf("/api/tasks/%d", f.task.ID)

	allowed := f.env.do(t, http.MethodGet, path, f.env.bearer(t, f.assignee), nil)
	require.Equal(t, http.StatusOK, allowed.Code)

	var task dto.TaskDTO
	decodeJSON(t, allowed, &task)
	require.Equal(t, f.task.ID, task.ID)

	// A teammate who is not the assignee is denied, as is a non-member.
	teammate := f.env.do(t, http.MethodGet, path, f.env.bearer(t, f.teammate), nil)
	require.Equal(t, http.StatusForbidden, teammate.Code)

	outsider := f.env.do(t, http.MethodGet, path, f.env.bearer(t, f.outsider), nil)
	require.Equal(t, http.StatusForbidden, outsider.Code)

	admin := f.env.do(t, http.MethodGet, path, f.env.bearer(t, f.admin), nil)
	require.Equal(t, http.StatusOK, admin.Code)
}

func TestTaskHandler_GetTask_NotFound(t *testing.T) {
	f := setupTaskFixture(t)

	w := f.env.do(t, http.MethodGet, "/api/tasks/999", f.env.bearer(t, f.assignee), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_ListTasks_ScopedToAssignee(t *testing.T) {
	f := setupTaskFixture(t)
	f.env.createTask(t, "teammate's task", f.project.ID, &f.teammate.ID)
	f.env.createTask(t, "unassigned task", f.project.ID, nil)

	// Non-admins only ever see their own tasks, however broad the filters.
	memberView := f.env.do(t, http.MethodGet, "/api/tasks", f.env.bearer(t, f.assignee), nil)
	require.Equal(t, http.StatusOK, memberView.Code)

	var memberList dto.TaskListResponse
	decodeJSON(t, memberView, &memberList)
	require.Len(t, memberList.Tasks, 1)
	require.Equal(t, f.task.ID, memberList.Tasks[0].ID)
	require.EqualValues(t, 1, memberList.Pagination.Total)

	adminView := f.env.do(t, http.MethodGet, "/api/tasks", f.env.bearer(t, f.admin), nil)
	require.Equal(t, http.StatusOK, adminView.Code)

	var adminList dto.TaskListResponse
	decodeJSON(t, adminView, &adminList)
	require.Len(t, adminList.Tasks, 3)

	// assigned_to_me narrows the admin view the same way.
	adminMine := f.env.do(t, http.MethodGet, "/api/tasks?assigned_to_me=true", f.env.bearer(t, f.admin), nil)
	require.Equal(t, http.StatusOK, adminMine.Code)

	var adminMineList dto.TaskListResponse
	decodeJSON(t, adminMine, &adminMineList)
	require.Empty(t, adminMineList.Tasks)
}

func TestTaskHandler_ListTasks_StatusFilter(t *testing.T) {
	f := setupTaskFixture(t)
	done := f.env.createTask(t, "done task", f.project.ID, &f.assignee.ID)
	require.NoError(t, f.env.db.Model(&models.Task{}).
		Where("id = ?", done.ID).
		Update("status", models.TaskStatusDone).Error)

	w := f.env.do(t, http.MethodGet, "/api/tasks?status=done", f.env.bearer(t, f.assignee), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list dto.TaskListResponse
	decodeJSON(t, w, &list)
	require.Len(t, list.Tasks, 1)
	require.Equal(t, done.ID, list.Tasks[0].ID)
}

func TestTaskHandler_UpdateTaskStatus(t *testing.T) {
	f := setupTaskFixture(t)
	path := fmt.Sprintf("/api/tasks/%d/status", f.task.ID)

	updated := f.env.do(t, http.MethodPatch, path, f.env.bearer(t, f.assignee), map[string]string{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, updated.Code)

	var task dto.TaskDTO
	decodeJSON(t, updated, &task)
	require.Equal(t, models.TaskStatusInProgress, task.Status)

	invalid := f.env.do(t, http.MethodPatch, path, f.env.bearer(t, f.assignee), map[string]string{
		"status": "blocked",
	})
	require.Equal(t, http.StatusBadRequest, invalid.Code)

	denied := f.env.do(t, http.MethodPatch, path, f.env.bearer(t, f.teammate), map[string]string{
		"status": "done",
	})
	require.Equal(t, http.StatusForbidden, denied.Code)
}

func TestTaskHandler_UpdateTask_AssigneeOnly(t *testing.T) {
	f := setupTaskFixture(t)
	path := fmt.Sprintf("/api/tasks/%d", f.task.ID)

	updated := f.env.do(t, http.MethodPut, path, f.env.bearer(t, f.assignee), map[string]string{
		"title":       "write better plan",
		"description": "with milestones",
	})
	require.Equal(t, http.StatusOK, updated.Code)

	var task dto.TaskDTO
	decodeJSON(t, updated, &task)
	require.Equal(t, "write better plan", task.Title)
	require.Equal(t, "with milestones", task.Description)

	denied := f.env.do(t, http.MethodPut, path, f.env.bearer(t, f.teammate), map[string]string{
		"title": "hijacked",
	})
	require.Equal(t, http.StatusForbidden, denied.Code)
}

func TestTaskHandler_DeleteTask_AdminOnly(t *testing.T) {
	f := setupTaskFixture(t)
	path := fmt.Sprintf("/api/tasks/%d", f.task.ID)

	// Even the assignee cannot delete.
	denied := f.env.do(t, http.MethodDelete, path, f.env.bearer(t, f.assignee), nil)
	require.Equal(t, http.StatusForbidden, denied.Code)

	deleted := f.env.do(t, http.MethodDelete, path, f.env.bearer(t, f.admin), nil)
	require.Equal(t, http.StatusOK, deleted.Code)

	gone := f.env.do(t, http.MethodDelete, path, f.env.bearer(t, f.admin), nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
}

func TestTaskHandler_AssignAndUnassign(t *testing.T) {
	f := setupTaskFixture(t)

	// Any member of the task's team can reassign it.
	assigned := f.env.do(t, http.MethodPost,
		fmt.Sprintf("/api/tasks/%d/assign/%d", f.task.ID, f.teammate.ID),
		f.env.bearer(t, f.teammate), nil)
	require.Equal(t, http.StatusOK, assigned.Code)

	var task dto.TaskDTO
	decodeJSON(t, assigned, &task)
	require.NotNil(t, task.AssigneeID)
	require.Equal(t, f.teammate.ID, *task.AssigneeID)

	unassigned := f.env.do(t, http.MethodPost,
		fmt.Sprintf("/api/tasks/%d/unassign", f.task.ID),
		f.env.bearer(t, f.teammate), nil)
	require.Equal(t, http.StatusOK, unassigned.Code)

	decodeJSON(t, unassigned, &task)
	require.Nil(t, task.AssigneeID)
}

func TestTaskHandler_Assign_OutsiderForbidden(t *testing.T) {
	f := setupTaskFixture(t)

	w := f.env.do(t, http.MethodPost,
		fmt.Sprintf("/api/tasks/%d/assign/%d", f.task.ID, f.outsider.ID),
		f.env.bearer(t, f.outsider), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
