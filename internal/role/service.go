package role

import (
	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// Repository is the role slice of the entity store. Lookups return nil
// without error when the entity does not exist.
type Repository interface {
	GetByID(id int64) (*rbac.Role, error)
	GetByName(name string) (*rbac.Role, error)
	List(offset, limit int) ([]rbac.Role, error)
	Create(r *rbac.Role) error
	Update(r *rbac.Role) error
	Delete(id int64) error
	GetPermissionByID(id int64) (*rbac.Permission, error)
	AppendPermission(r *rbac.Role, perm *rbac.Permission) error
	RemovePermission(r *rbac.Role, perm *rbac.Permission) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int64) (*Role, error) {
	role, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(role), nil
}

func (s *Service) List(skip, limit int) (*RoleList, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	roles, err := s.repo.List(skip, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	out := make([]*Role, 0, len(roles))
	for i := range roles {
		out = append(out, FromDataModel(&roles[i]))
	}
	return &RoleList{Roles: out, Total: len(out)}, nil
}

func (s *Service) Create(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByName(dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check role name", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleNameTaken
	}

	role := &rbac.Role{
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.repo.Create(role); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	return FromDataModel(role), nil
}

func (s *Service) Update(id int64, dto UpdateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	role, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}

	if dto.Name != nil && *dto.Name != role.Name {
		existing, err := s.repo.GetByName(*dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role name", err)
		}
		if existing != nil {
			return nil, internal.ErrRoleNameTaken
		}
		role.Name = *dto.Name
	}
	if dto.Description != nil {
		role.Description = *dto.Description
	}

	if err := s.repo.Update(role); err != nil {
		return nil, internal.NewInternalError("failed to update role", err)
	}

	return FromDataModel(role), nil
}

func (s *Service) Delete(id int64) error {
	role, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to get role", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}
	return nil
}

// AddPermission grants a permission to the role. Granting an already-held
// permission is a no-op.
func (s *Service) AddPermission(roleID, permissionID int64) error {
	role, perm, err := s.loadRoleAndPermission(roleID, permissionID)
	if err != nil {
		return err
	}

	for _, held := range role.Permissions {
		if held.ID == perm.ID {
			return nil
		}
	}

	if err := s.repo.AppendPermission(role, perm); err != nil {
		return internal.NewInternalError("failed to add permission to role", err)
	}
	return nil
}

// RemovePermission revokes a permission from the role. The next request by
// any user holding this role through a guard check sees the revocation,
// regardless of outstanding tokens.
func (s *Service) RemovePermission(roleID, permissionID int64) error {
	role, perm, err := s.loadRoleAndPermission(roleID, permissionID)
	if err != nil {
		return err
	}

	for _, held := range role.Permissions {
		if held.ID == perm.ID {
			if err := s.repo.RemovePermission(role, perm); err != nil {
				return internal.NewInternalError("failed to remove permission from role", err)
			}
			return nil
		}
	}
	return nil
}

func (s *Service) loadRoleAndPermission(roleID, permissionID int64) (*rbac.Role, *rbac.Permission, error) {
	role, err := s.repo.GetByID(roleID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get role", err)
	}
	if role == nil {
		return nil, nil, internal.ErrRoleNotFound
	}

	perm, err := s.repo.GetPermissionByID(permissionID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get permission", err)
	}
	if perm == nil {
		return nil, nil, internal.ErrPermissionNotFound
	}

	return role, perm, nil
}
