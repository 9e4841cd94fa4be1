package permission

import (
	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// Repository is the permission slice of the entity store. Lookups return nil
// without error when the entity does not exist.
type Repository interface {
	GetByID(id int64) (*rbac.Permission, error)
	GetByName(name string) (*rbac.Permission, error)
	List(offset, limit int) ([]rbac.Permission, error)
	Create(p *rbac.Permission) error
	Update(p *rbac.Permission) error
	Delete(id int64) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int64) (*Permission, error) {
	perm, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}
	return FromDataModel(perm), nil
}

func (s *Service) List(skip, limit int) (*PermissionList, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	perms, err := s.repo.List(skip, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	out := make([]*Permission, 0, len(perms))
	for i := range perms {
		out = append(out, FromDataModel(&perms[i]))
	}
	return &PermissionList{Permissions: out, Total: len(out)}, nil
}

func (s *Service) Create(dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByName(dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check permission name", err)
	}
	if existing != nil {
		return nil, internal.ErrPermissionNameTaken
	}

	perm := &rbac.Permission{
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.repo.Create(perm); err != nil {
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	return FromDataModel(perm), nil
}

func (s *Service) Update(id int64, dto UpdatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	perm, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get permission", err)
	}
	if perm == nil {
		return nil, internal.ErrPermissionNotFound
	}

	if dto.Name != nil && *dto.Name != perm.Name {
		existing, err := s.repo.GetByName(*dto.Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to check permission name", err)
		}
		if existing != nil {
			return nil, internal.ErrPermissionNameTaken
		}
		perm.Name = *dto.Name
	}
	if dto.Description != nil {
		perm.Description = *dto.Description
	}

	if err := s.repo.Update(perm); err != nil {
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	return FromDataModel(perm), nil
}

func (s *Service) Delete(id int64) error {
	perm, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to get permission", err)
	}
	if perm == nil {
		return internal.ErrPermissionNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete permission", err)
	}
	return nil
}
