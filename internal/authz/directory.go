package authz

import (
	"errors"

	"github.com/hikarock/kanban-board-api/internal/models"
	"gorm.io/gorm"
)

// GormDirectory backs MembershipDirectory and ResourceResolver with point
// lookups against the database. No caching: a membership or role change is
// visible to the very next Authorize call.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) RoleInTeam(userID, teamID uint64) (*models.TeamRole, error) {
	var member models.TeamMember
	err := d.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member.Role, nil
}

func (d *GormDirectory) TeamsFor(userID uint64) ([]models.TeamMember, error) {
	var memberships []models.TeamMember
	if err := d.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (d *GormDirectory) TeamForProject(projectID uint64) (uint64, error) {
	var project models.Project
	if err := d.db.Select("id", "team_id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrResourceNotFound
		}
		return 0, err
	}
	return project.TeamID, nil
}

func (d *GormDirectory) TaskRef(taskID uint64) (uint64, *uint64, error) {
	var task models.Task
	if err := d.db.Select("id", "project_id", "assignee_id").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrResourceNotFound
		}
		return 0, nil, err
	}

	teamID, err := d.TeamForProject(task.ProjectID)
	if err != nil {
		return 0, nil, err
	}
	return teamID, task.AssigneeID, nil
}
