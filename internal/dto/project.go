package dto

import (
	"time"

	"github.com/hikarock/kanban-board-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TeamID      uint64    `json:"team_id"`
	CreatorID   uint64    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectWithTasksDTO represents a project with its tasks
type ProjectWithTasksDTO struct {
	ProjectDTO
	Tasks []TaskDTO `json:"tasks"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		TeamID:      project.TeamID,
		CreatorID:   project.CreatorID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}

// ToProjectWithTasksDTO converts a project with preloaded tasks
func ToProjectWithTasksDTO(project models.Project) ProjectWithTasksDTO {
	tasks := make([]TaskDTO, len(project.Tasks))
	for i, task := range project.Tasks {
		tasks[i] = ToTaskDTO(task)
	}

	return ProjectWithTasksDTO{
		ProjectDTO: ToProjectDTO(project),
		Tasks:      tasks,
	}
}
