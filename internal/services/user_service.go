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

var ErrInvalidUserRole = errors.New("invalid user role")

// UserService provides user lookup and administration.
type UserService struct {
	userRepo repository.UserRepository
	teamRepo repository.TeamRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, teamRepo repository.TeamRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		teamRepo: teamRepo,
	}
}

// ListUsers returns users for task assignment purposes. Any authenticated
// user may call this.
func (s *UserService) ListUsers(offset, limit int) ([]models.User, error) {
	users, err := s.userRepo.List(offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns a user's profile. Only the user themselves or a global
// admin may view it.
func (s *UserService) GetUser(principal auth.Principal, userID uint64) (*models.User, error) {
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, authz.ErrAccessDenied
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetUserTeams returns the teams a user belongs to. Only the user
// themselves or a global admin may view them. An empty list is a valid
// answer, never an error.
func (s *UserService) GetUserTeams(principal auth.Principal, userID uint64) ([]models.Team, error) {
	if principal.UserID != userID && !principal.IsAdmin() {
		return nil, authz.ErrAccessDenied
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	teams, err := s.teamRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user teams: %w", err)
	}
	return teams, nil
}

// UpdateRole changes a user's global role. Admin only. The target's active
// access tokens keep their old role claim until the next refresh.
func (s *UserService) UpdateRole(principal auth.Principal, userID uint64, role models.UserRole) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, authz.ErrAccessDenied
	}

	if role != models.UserRoleAdmin && role != models.UserRoleMember {
		return nil, ErrInvalidUserRole
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	user.Role = role
	return user, nil
}
