package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/dto"
	apierrors "github.com/hikarock/kanban-board-api/internal/errors"
	"github.com/hikarock/kanban-board-api/internal/middleware"
	"github.com/hikarock/kanban-board-api/internal/services"
	"github.com/hikarock/kanban-board-api/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project in a team.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
		TeamID      uint64 `json:"team_id" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(principal, services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		TeamID:      req.TeamID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects lists projects visible to the principal.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	projects, err := h.projectService.ListProjects(principal, params.Offset, params.Limit)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns a project with its tasks.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(principal, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectWithTasksDTO(*project))
}

// UpdateProject updates a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(principal, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(principal, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, authz.ErrResourceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
