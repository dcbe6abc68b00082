package services

import (
	"errors"
	"fmt"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrStatusRequired    = errors.New("status is required")
	ErrAssigneeNotFound  = errors.New("assignee not found")
)

// TaskService handles task business logic. Team membership grants creation
// and listing rights inside a team's projects; by-ID access to a task is
// narrowed to its assignee unless the caller is a global admin.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	engine      *authz.Engine
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, engine *authz.Engine) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		engine:      engine,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	ProjectID   uint64
	AssigneeID  *uint64
}

// CreateTask creates a new task in a project whose team the principal
// belongs to.
func (s *TaskService) CreateTask(principal auth.Principal, input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskCreate, authz.ProjectResource(input.ProjectID)); err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !validTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee")
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	ProjectID    *uint64
	Status       *models.TaskStatus
	AssignedToMe bool
	Offset       int
	Limit        int
}

// ListTasks returns tasks visible to the principal. Admins see everything;
// members see only tasks assigned to them, however broad the filters.
func (s *TaskService) ListTasks(principal auth.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Offset:    input.Offset,
		Limit:     input.Limit,
	}

	if !principal.IsAdmin() || input.AssignedToMe {
		filter.AssigneeID = &principal.UserID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task by ID. Non-admins must be the assignee.
func (s *TaskService) GetTask(principal auth.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID, "Assignee", "Project")
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskView, authz.TaskResource(taskID)); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	AssigneeID  *uint64
}

// UpdateTask updates a task. Non-admins must be the assignee.
func (s *TaskService) UpdateTask(principal auth.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskUpdate, authz.TaskResource(taskID)); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !validTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.AssigneeID != nil {
		if err := s.ensureUserExists(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee")
}

// UpdateTaskStatus changes only the status. Non-admins must be the assignee.
func (s *TaskService) UpdateTaskStatus(principal auth.Principal, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if status == "" {
		return nil, ErrStatusRequired
	}
	if !validTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskUpdate, authz.TaskResource(taskID)); err != nil {
		return nil, err
	}

	task.Status = status
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task. Admin only.
func (s *TaskService) DeleteTask(principal auth.Principal, taskID uint64) error {
	if err := s.engine.Authorize(principal, authz.ActionTaskDelete, authz.TaskResource(taskID)); err != nil {
		return err
	}

	if _, err := s.findTask(taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignTask assigns a task to a user. Requires membership in the task's
// team or a global admin role.
func (s *TaskService) AssignTask(principal auth.Principal, taskID, userID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskAssign, authz.TaskResource(taskID)); err != nil {
		return nil, err
	}

	if err := s.ensureUserExists(userID); err != nil {
		return nil, err
	}

	task.AssigneeID = &userID
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee")
}

// UnassignTask clears a task's assignee.
func (s *TaskService) UnassignTask(principal auth.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTaskAssign, authz.TaskResource(taskID)); err != nil {
		return nil, err
	}

	task.AssigneeID = nil
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to unassign task: %w", err)
	}

	return task, nil
}

func (s *TaskService) findTask(taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureUserExists(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return nil
}

func validTaskStatus(status models.TaskStatus) bool {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
		return true
	default:
		return false
	}
}
