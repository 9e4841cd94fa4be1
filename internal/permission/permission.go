package permission

import (
	"time"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// Permission is the API-facing view of a permission entry.
type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(p *rbac.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type PermissionList struct {
	Permissions []*Permission `json:"permissions"`
	Total       int           `json:"total"`
}
