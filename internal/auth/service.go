package auth

import (
	"fmt"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
)

// RepositoryAPI is the slice of the entity store the auth flow needs. Reads
// return users with roles and permissions preloaded so the resolver can
// compute the effective set without further queries.
type RepositoryAPI interface {
	GetByUsername(username string) (*rbac.User, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
	Create(user *rbac.User) error
}

// Service authenticates credentials, registers accounts and substantiates
// token subjects into live users.
type Service struct {
	repo       RepositoryAPI
	codec      TokenCodec
	bcryptCost int
}

func NewService(repo RepositoryAPI, codec TokenCodec, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		codec:      codec,
		bcryptCost: bcryptCost,
	}
}

// Authenticate verifies credentials and mints an access token carrying the
// permission set effective right now. Unknown username and wrong password
// collapse into the same error so callers cannot enumerate accounts.
func (s *Service) Authenticate(dto LoginDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	u, err := s.repo.GetByUsername(dto.Username)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || !VerifyPassword(u.PasswordHash, dto.Password) {
		return TokenResponse{}, ErrInvalidCredentials
	}

	if !u.IsActive {
		return TokenResponse{}, ErrUserInactive
	}

	token, err := s.codec.Issue(u.Username, u.ID, EffectivePermissions(u))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// Register creates a new account. Uniqueness is pre-checked so duplicates
// surface as conflicts rather than driver errors; the unique indexes on the
// users table back this up.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.UsernameExists(dto.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	if dto.Email != nil {
		taken, err = s.repo.EmailExists(*dto.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &rbac.User{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return FromDataModel(u), nil
}

// ResolveUser loads the live user for a token subject, with roles and
// permissions as they stand in the store right now. Deactivated accounts are
// rejected here regardless of token validity.
func (s *Service) ResolveUser(username string) (*User, error) {
	u, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return FromDataModel(u), nil
}

// DecodeToken verifies and parses an access token.
func (s *Service) DecodeToken(tokenString string) (*Claims, error) {
	return s.codec.Decode(tokenString)
}
