package repository

import (
	"github.com/hikarock/kanban-board-api/internal/database"
	"github.com/hikarock/kanban-board-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and its tasks in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// List returns all projects with pagination
func (r *GormProjectRepository) List(offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Scopes(database.Paginate(offset, limit)).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByTeamIDs returns projects belonging to any of the given teams
func (r *GormProjectRepository) ListByTeamIDs(teamIDs []uint64, offset, limit int) ([]models.Project, error) {
	if len(teamIDs) == 0 {
		return []models.Project{}, nil
	}

	var projects []models.Project
	if err := r.db.Where("team_id IN ?", teamIDs).
		Scopes(database.Paginate(offset, limit)).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
