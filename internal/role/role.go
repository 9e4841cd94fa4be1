package role

import (
	"time"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// Role is the API-facing view of a role and the permissions it grants.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(r *rbac.Role) *Role {
	permissions := make([]string, 0, len(r.Permissions))
	for _, perm := range r.Permissions {
		permissions = append(permissions, perm.Name)
	}
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: permissions,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type RoleList struct {
	Roles []*Role `json:"roles"`
	Total int     `json:"total"`
}
