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
	"github.com/hikarock/kanban-board-api/internal/utils"
)

// UserHandler coordinates user management HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns users for task assignment purposes.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, err := h.userService.ListUsers(params.Offset, params.Limit)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// GetUser returns a user's profile (self or admin).
func (h *UserHandler) GetUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(principal, userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GetUserTeams returns the teams a user belongs to (self or admin).
func (h *UserHandler) GetUserTeams(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	teams, err := h.userService.GetUserTeams(principal, userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams))
}

// UpdateRole changes a user's global role (admin only).
func (h *UserHandler) UpdateRole(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateRoleRequest struct {
		Role models.UserRole `json:"role" binding:"required"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Field 'role' is required")
		return
	}

	user, err := h.userService.UpdateRole(principal, userID, req.Role)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidUserRole):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
