package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameTaken      = errors.New("a team with this name already exists")
	ErrInvalidTeamName    = errors.New("team name cannot be empty")
	ErrAlreadyTeamMember  = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound = errors.New("user is not a member of this team")
)

// TeamService provides business logic for team and membership operations.
// Every operation is authorized through the policy engine; team management
// is reserved for global admins.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	engine   *authz.Engine
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, engine *authz.Engine) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		engine:   engine,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// CreateTeam creates a new team. Admin only.
func (s *TeamService) CreateTeam(principal auth.Principal, input CreateTeamInput) (*models.Team, error) {
	if err := s.engine.Authorize(principal, authz.ActionTeamCreate, authz.Resource{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidTeamName
	}

	if _, err := s.teamRepo.FindByName(input.Name); err == nil {
		return nil, ErrTeamNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}

	team := &models.Team{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := s.teamRepo.Create(team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// ListTeams returns all teams for admins, or the teams the principal is a
// member of.
func (s *TeamService) ListTeams(principal auth.Principal) ([]models.Team, error) {
	if principal.IsAdmin() {
		teams, err := s.teamRepo.List()
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		return teams, nil
	}

	teams, err := s.teamRepo.ListForUser(principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam returns a team and its members.
func (s *TeamService) GetTeam(principal auth.Principal, teamID uint64) (*models.Team, []models.TeamMember, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamView, authz.TeamResource(teamID)); err != nil {
		return nil, nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// UpdateTeamInput represents updatable team fields.
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// UpdateTeam updates a team's name or description. Admin only.
func (s *TeamService) UpdateTeam(principal auth.Principal, teamID uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.findTeam(teamID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamUpdate, authz.TeamResource(teamID)); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidTeamName
		}
		if existing, err := s.teamRepo.FindByName(*input.Name); err == nil && existing.ID != teamID {
			return nil, ErrTeamNameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check team name: %w", err)
		}
		team.Name = *input.Name
	}
	if input.Description != nil {
		team.Description = *input.Description
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	return team, nil
}

// DeleteTeam removes a team, its memberships, and its projects. Admin only.
func (s *TeamService) DeleteTeam(principal auth.Principal, teamID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamDelete, authz.TeamResource(teamID)); err != nil {
		return err
	}

	if err := s.teamRepo.Delete(teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}

// AddMemberInput represents parameters to add a team member.
type AddMemberInput struct {
	TeamID uint64
	UserID uint64
	Role   models.TeamRole
}

// AddMember adds a user to a team with a team-scoped role. Admin only.
func (s *TeamService) AddMember(principal auth.Principal, input AddMemberInput) (*models.TeamMember, error) {
	if _, err := s.findTeam(input.TeamID); err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamMemberAdd, authz.TeamResource(input.TeamID)); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(input.TeamID, input.UserID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.TeamRoleMember
	}

	member := &models.TeamMember{
		TeamID:   input.TeamID,
		UserID:   input.UserID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	if err := s.teamRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// ListMembers lists a team's members.
func (s *TeamService) ListMembers(principal auth.Principal, teamID uint64) ([]models.TeamMember, error) {
	if _, err := s.findTeam(teamID); err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamView, authz.TeamResource(teamID)); err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// RemoveMember removes a user from a team. Admin only.
func (s *TeamService) RemoveMember(principal auth.Principal, teamID, userID uint64) error {
	if _, err := s.findTeam(teamID); err != nil {
		return err
	}

	if err := s.engine.Authorize(principal, authz.ActionTeamMemberRemove, authz.TeamResource(teamID)); err != nil {
		return err
	}

	if _, err := s.teamRepo.FindMember(teamID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to find team member: %w", err)
	}

	if err := s.teamRepo.RemoveMember(teamID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *TeamService) findTeam(teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}
