package auth

import "github.com/hikarock/kanban-board-api/internal/models"

// Principal is an authenticated actor: a user ID plus the global role it
// held when the request was authenticated.
type Principal struct {
	UserID uint64
	Email  string
	Role   models.UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.UserRoleAdmin
}
