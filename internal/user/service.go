package user

import (
	"fmt"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// Repository is the user slice of the entity store. Lookups return nil
// without error when the entity does not exist.
type Repository interface {
	GetByID(id int64) (*rbac.User, error)
	List(offset, limit int) ([]rbac.User, error)
	UsernameExists(username string, excludeID int64) (bool, error)
	EmailExists(email string, excludeID int64) (bool, error)
	Create(u *rbac.User) error
	Update(u *rbac.User) error
	Delete(id int64) error
	GetRoleByID(id int64) (*rbac.Role, error)
	AppendRole(u *rbac.User, role *rbac.Role) error
	RemoveRole(u *rbac.User, role *rbac.Role) error
}

type Service struct {
	repo       Repository
	bcryptCost int
}

func NewService(repo Repository, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

func (s *Service) List(skip, limit int) (*UserList, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	users, err := s.repo.List(skip, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}

	out := make([]*User, 0, len(users))
	for i := range users {
		out = append(out, FromDataModel(&users[i]))
	}
	return &UserList{Users: out, Total: len(out)}, nil
}

func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if err := s.checkUniqueness(dto.Username, dto.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	isActive := true
	if dto.IsActive != nil {
		isActive = *dto.IsActive
	}

	u := &rbac.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		IsActive:     isActive,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	return FromDataModel(u), nil
}

func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	username := u.Username
	if dto.Username != nil {
		username = *dto.Username
	}
	if err := s.checkUniqueness(username, dto.Email, id); err != nil {
		return nil, err
	}

	if dto.Username != nil {
		u.Username = *dto.Username
	}
	if dto.Email != nil {
		u.Email = dto.Email
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(u); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	return FromDataModel(u), nil
}

func (s *Service) Delete(id int64) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return internal.ErrUserNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	return nil
}

// AssignRole adds a role to the user's set. Assigning an already-held role
// is a no-op.
func (s *Service) AssignRole(userID, roleID int64) error {
	u, role, err := s.loadUserAndRole(userID, roleID)
	if err != nil {
		return err
	}

	for _, held := range u.Roles {
		if held.ID == role.ID {
			return nil
		}
	}

	if err := s.repo.AppendRole(u, role); err != nil {
		return internal.NewInternalError("failed to assign role", err)
	}
	return nil
}

// RemoveRole drops a role from the user's set. Removing an unheld role is a
// no-op.
func (s *Service) RemoveRole(userID, roleID int64) error {
	u, role, err := s.loadUserAndRole(userID, roleID)
	if err != nil {
		return err
	}

	for _, held := range u.Roles {
		if held.ID == role.ID {
			if err := s.repo.RemoveRole(u, role); err != nil {
				return internal.NewInternalError("failed to remove role", err)
			}
			return nil
		}
	}
	return nil
}

func (s *Service) loadUserAndRole(userID, roleID int64) (*rbac.User, *rbac.Role, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, nil, internal.ErrUserNotFound
	}

	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return nil, nil, internal.NewInternalError("failed to get role", err)
	}
	if role == nil {
		return nil, nil, internal.ErrRoleNotFound
	}

	return u, role, nil
}

func (s *Service) checkUniqueness(username string, email *string, excludeID int64) error {
	taken, err := s.repo.UsernameExists(username, excludeID)
	if err != nil {
		return internal.NewInternalError(fmt.Sprintf("failed to check username %q", username), err)
	}
	if taken {
		return internal.ErrUsernameTaken
	}

	if email != nil {
		taken, err = s.repo.EmailExists(*email, excludeID)
		if err != nil {
			return internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return internal.ErrEmailTaken
		}
	}
	return nil
}
