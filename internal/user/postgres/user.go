package postgres

import (
	"errors"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"github.com/frahmantamala/access-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*rbac.User, error) {
	var u rbac.User
	err := r.db.Preload("Roles.Permissions").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(offset, limit int) ([]rbac.User, error) {
	var users []rbac.User
	err := r.db.Preload("Roles").Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) UsernameExists(username string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&rbac.User{}).Where("username = ?", username)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) EmailExists(email string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&rbac.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Create(u *rbac.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *rbac.User) error {
	return r.db.Omit("Roles").Save(u).Error
}

// Delete removes the user row; user_roles association rows go with it so
// referential integrity is preserved.
func (r *UserRepository) Delete(id int64) error {
	u := rbac.User{ID: id}
	if err := r.db.Model(&u).Association("Roles").Clear(); err != nil {
		return err
	}
	return r.db.Delete(&u).Error
}

func (r *UserRepository) GetRoleByID(id int64) (*rbac.Role, error) {
	var role rbac.Role
	err := r.db.Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *UserRepository) AppendRole(u *rbac.User, role *rbac.Role) error {
	return r.db.Model(u).Association("Roles").Append(role)
}

func (r *UserRepository) RemoveRole(u *rbac.User, role *rbac.Role) error {
	return r.db.Model(u).Association("Roles").Delete(role)
}
