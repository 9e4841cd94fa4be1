package postgres

import (
	"errors"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"github.com/frahmantamala/access-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByID(id int64) (*rbac.Permission, error) {
	var out rbac.Permission
	err := r.db.Where("id = ?", id).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *PermissionRepository) GetByName(name string) (*rbac.Permission, error) {
	var out rbac.Permission
	err := r.db.Where("name = ?", name).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *PermissionRepository) List(offset, limit int) ([]rbac.Permission, error) {
	var perms []rbac.Permission
	err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) Create(p *rbac.Permission) error {
	return r.db.Create(p).Error
}

func (r *PermissionRepository) Update(p *rbac.Permission) error {
	return r.db.Save(p).Error
}

// Delete removes the permission and clears the role associations pointing at
// it so no role keeps a dangling grant.
func (r *PermissionRepository) Delete(id int64) error {
	perm := rbac.Permission{ID: id}
	if err := r.db.Model(&perm).Association("Roles").Clear(); err != nil {
		return err
	}
	return r.db.Delete(&perm).Error
}
