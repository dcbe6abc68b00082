package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProjectName = errors.New("project name cannot be empty")
)

// ProjectService provides business logic for project operations. Projects
// are scoped to teams: membership in the owning team (or a global admin
// role) is required for every operation.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	teamRepo    repository.TeamRepository
	directory   authz.MembershipDirectory
	engine      *authz.Engine
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, teamRepo repository.TeamRepository, directory authz.MembershipDirectory, engine *authz.Engine) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		directory:   directory,
		engine:      engine,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	TeamID      uint64
}

// CreateProject creates a project in a team the principal belongs to.
func (s *ProjectService) CreateProject(principal auth.Principal, input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	if _, err := s.teamRepo.FindByID(input.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	if err := s.engine.Authorize(principal, authz.ActionProjectCreate, authz.TeamResource(input.TeamID)); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		TeamID:      input.TeamID,
		CreatorID:   principal.UserID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns all projects for admins, or the projects of the
// principal's teams.
func (s *ProjectService) ListProjects(principal auth.Principal, offset, limit int) ([]models.Project, error) {
	if principal.IsAdmin() {
		projects, err := s.projectRepo.List(offset, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		return projects, nil
	}

	memberships, err := s.directory.TeamsFor(principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team memberships: %w", err)
	}

	teamIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		teamIDs = append(teamIDs, m.TeamID)
	}

	projects, err := s.projectRepo.ListByTeamIDs(teamIDs, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project with its tasks.
func (s *ProjectService) GetProject(principal auth.Principal, projectID uint64) (*models.Project, error) {
	project, err := s.findProject(projectID, "Tasks")
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionProjectView, authz.ProjectResource(projectID)); err != nil {
		return nil, err
	}

	return project, nil
}

// UpdateProjectInput represents updatable project fields.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject updates a project's name or description.
func (s *ProjectService) UpdateProject(principal auth.Principal, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionProjectUpdate, authz.ProjectResource(projectID)); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and its tasks.
func (s *ProjectService) DeleteProject(principal auth.Principal, projectID uint64) error {
	if _, err := s.findProject(projectID); err != nil {
		return err
	}

	if err := s.engine.Authorize(principal, authz.ActionProjectDelete, authz.ProjectResource(projectID)); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *ProjectService) findProject(projectID uint64, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
