package dto

import (
	"time"

	"github.com/hikarock/kanban-board-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeamMemberDTO represents a member in a team
type TeamMemberDTO struct {
	User     UserDTO         `json:"user"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

// TeamWithMembersDTO represents detailed team information
type TeamWithMembersDTO struct {
	TeamDTO
	Members []TeamMemberDTO `json:"members"`
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedAt:   team.CreatedAt,
	}
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, team := range teams {
		dtos[i] = ToTeamDTO(team)
	}
	return dtos
}

// ToTeamMemberDTO converts a membership to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	return TeamMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamWithMembersDTO converts a team and its members to a detailed DTO
func ToTeamWithMembersDTO(team models.Team, members []models.TeamMember) TeamWithMembersDTO {
	memberDTOs := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToTeamMemberDTO(member)
	}

	return TeamWithMembersDTO{
		TeamDTO: ToTeamDTO(team),
		Members: memberDTOs,
	}
}
