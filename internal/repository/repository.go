package repository

import (
	"github.com/hikarock/kanban-board-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalTeam creates a user, a personal team, and a lead
	// membership within a single transaction.
	CreateWithPersonalTeam(user *models.User, team *models.Team, member *models.TeamMember) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByIdentifier finds a user whose email OR username matches
	FindByIdentifier(identifier string) (*models.User, error)

	// List retrieves users with pagination
	List(offset, limit int) ([]models.User, error)

	// UpdateRole changes a user's global role
	UpdateRole(id uint64, role models.UserRole) error
}

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// Create creates a new team
	Create(team *models.Team) error

	// FindByID finds a team by ID
	FindByID(id uint64) (*models.Team, error)

	// FindByName finds a team by its unique name
	FindByName(name string) (*models.Team, error)

	// Update updates a team
	Update(team *models.Team) error

	// Delete deletes a team, its memberships, its projects, and their tasks
	Delete(id uint64) error

	// List returns all teams
	List() ([]models.Team, error)

	// ListForUser returns the teams the user is a member of
	ListForUser(userID uint64) ([]models.Team, error)

	// AddMember adds a member to a team
	AddMember(member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(teamID, userID uint64) error

	// FindMember finds a specific team membership
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembers lists all members of a team
	ListMembers(teamID uint64) ([]models.TeamMember, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete deletes a project and its tasks
	Delete(id uint64) error

	// List returns all projects with pagination
	List(offset, limit int) ([]models.Project, error)

	// ListByTeamIDs returns projects belonging to any of the given teams
	ListByTeamIDs(teamIDs []uint64, offset, limit int) ([]models.Project, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID  *uint64
	Status     *models.TaskStatus
	AssigneeID *uint64
	Offset     int
	Limit      int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error

	// List retrieves tasks matching the filter
	List(filter TaskFilter) ([]models.Task, int64, error)
}
