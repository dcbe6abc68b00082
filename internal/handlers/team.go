package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/dto"
	apierrors "github.com/hikarock/kanban-board-api/internal/errors"
	"github.com/hikarock/kanban-board-api/internal/middleware"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/services"
)

// TeamHandler coordinates team management HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a new team (admin only).
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(principal, services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListTeams lists teams visible to the principal.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teams, err := h.teamService.ListTeams(principal)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams))
}

// GetTeam returns team details with members.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	team, members, err := h.teamService.GetTeam(principal, teamID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamWithMembersDTO(*team, members))
}

// UpdateTeam updates a team (admin only).
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	team, err := h.teamService.UpdateTeam(principal, teamID, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*team))
}

// DeleteTeam removes a team (admin only).
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(principal, teamID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
}

// AddMember adds a user to a team (admin only).
func (h *TeamHandler) AddMember(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64          `json:"user_id" binding:"required"`
		Role   models.TeamRole `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.AddMember(principal, services.AddMemberInput{
		TeamID: teamID,
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"team_id":   member.TeamID,
		"user_id":   member.UserID,
		"role":      member.Role,
		"joined_at": member.JoinedAt,
	})
}

// ListMembers lists a team's members.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(principal, teamID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	memberDTOs := make([]dto.TeamMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToTeamMemberDTO(member)
	}

	c.JSON(http.StatusOK, memberDTOs)
}

// RemoveMember removes a user from a team (admin only).
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(principal, teamID, userID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound),
		errors.Is(err, authz.ErrResourceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTeamNameTaken),
		errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidTeamName):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
