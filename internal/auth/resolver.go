package auth

import (
	"sort"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// EffectivePermissions computes the user's permission set: the union of
// permission names across all assigned roles, deduplicated. Two roles
// granting the same permission contribute it once. The result is sorted so
// callers see a stable order.
func EffectivePermissions(u *rbac.User) []string {
	seen := make(map[string]struct{})
	for _, role := range u.Roles {
		for _, perm := range role.Permissions {
			seen[perm.Name] = struct{}{}
		}
	}

	permissions := make([]string, 0, len(seen))
	for name := range seen {
		permissions = append(permissions, name)
	}
	sort.Strings(permissions)
	return permissions
}

// RoleNames lists the names of the user's assigned roles.
func RoleNames(u *rbac.User) []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// FromDataModel converts a store entity (with roles and permissions
// preloaded) into the request-scoped identity.
func FromDataModel(u *rbac.User) *User {
	return &User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActive:    u.IsActive,
		Roles:       RoleNames(u),
		Permissions: EffectivePermissions(u),
	}
}
