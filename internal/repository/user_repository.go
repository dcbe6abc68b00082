package repository

import (
	"errors"
	"fmt"

	"github.com/hikarock/kanban-board-api/internal/database"
	"github.com/hikarock/kanban-board-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateTeam is returned when creating a team fails inside the signup transaction.
	ErrCreateTeam = errors.New("user repository: create team failed")
	// ErrCreateTeamMember is returned when creating a team membership fails inside the signup transaction.
	ErrCreateTeamMember = errors.New("user repository: create team member failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// CreateWithPersonalTeam creates a user, a personal team, and the membership atomically.
func (r *GormUserRepository) CreateWithPersonalTeam(user *models.User, team *models.Team, member *models.TeamMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		member.TeamID = team.ID
		member.UserID = user.ID

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeamMember, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier finds a user by email or username
func (r *GormUserRepository) FindByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users with pagination
func (r *GormUserRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	if err := r.db.Scopes(database.Paginate(offset, limit)).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes a user's global role
func (r *GormUserRepository) UpdateRole(id uint64, role models.UserRole) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("role", role).Error
}
