package auth

// Permission names follow the resource:action convention.
const (
	PermUserCreate = "user:create"
	PermUserRead   = "user:read"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"

	PermRoleCreate = "role:create"
	PermRoleRead   = "role:read"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"

	PermPermissionCreate = "permission:create"
	PermPermissionRead   = "permission:read"
	PermPermissionUpdate = "permission:update"
	PermPermissionDelete = "permission:delete"
)

// Default role names created by the seed command.
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// AllPermissions enumerates every built-in permission with its description,
// used by the seeder to provision a fresh database.
func AllPermissions() []struct{ Name, Description string } {
	return []struct{ Name, Description string }{
		{PermUserCreate, "Create users"},
		{PermUserRead, "Read users"},
		{PermUserUpdate, "Update users and their role assignments"},
		{PermUserDelete, "Delete users"},
		{PermRoleCreate, "Create roles"},
		{PermRoleRead, "Read roles"},
		{PermRoleUpdate, "Update roles and their permission assignments"},
		{PermRoleDelete, "Delete roles"},
		{PermPermissionCreate, "Create permissions"},
		{PermPermissionRead, "Read permissions"},
		{PermPermissionUpdate, "Update permissions"},
		{PermPermissionDelete, "Delete permissions"},
	}
}
