package postgres

import (
	"errors"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"github.com/frahmantamala/access-management/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByID(id int64) (*rbac.Role, error) {
	var out rbac.Role
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepository) GetByName(name string) (*rbac.Role, error) {
	var out rbac.Role
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *RoleRepository) List(offset, limit int) ([]rbac.Role, error) {
	var roles []rbac.Role
	err := r.db.Preload("Permissions").Order("id ASC").Offset(offset).Limit(limit).Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Create(role *rbac.Role) error {
	return r.db.Create(role).Error
}

func (r *RoleRepository) Update(role *rbac.Role) error {
	return r.db.Omit("Permissions", "Users").Save(role).Error
}

// Delete removes the role and clears its association rows on both sides so
// no user keeps a dangling membership.
func (r *RoleRepository) Delete(id int64) error {
	role := rbac.Role{ID: id}
	if err := r.db.Model(&role).Association("Permissions").Clear(); err != nil {
		return err
	}
	if err := r.db.Model(&role).Association("Users").Clear(); err != nil {
		return err
	}
	return r.db.Delete(&role).Error
}

func (r *RoleRepository) GetPermissionByID(id int64) (*rbac.Permission, error) {
	var perm rbac.Permission
	err := r.db.Where("id = ?", id).First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &perm, nil
}

func (r *RoleRepository) AppendPermission(role *rbac.Role, perm *rbac.Permission) error {
	return r.db.Model(role).Association("Permissions").Append(perm)
}

func (r *RoleRepository) RemovePermission(role *rbac.Role, perm *rbac.Permission) error {
	return r.db.Model(role).Association("Permissions").Delete(perm)
}
