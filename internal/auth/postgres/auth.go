package postgres

import (
	"errors"

	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

// GetByUsername loads a user with roles and their permissions preloaded, so
// the caller can resolve the effective permission set without extra queries.
// Returns nil without error when the username is unknown.
func (r *Repository) GetByUsername(username string) (*rbac.User, error) {
	var u rbac.User
	err := r.db.Preload("Roles.Permissions").Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&rbac.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&rbac.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(u *rbac.User) error {
	return r.db.Create(u).Error
}
