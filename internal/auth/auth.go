package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// User is the request-scoped identity the guard resolves and hands to
// downstream handlers. Roles and Permissions reflect the store at the time
// of the request, not the token snapshot.
type User struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       *string  `json:"email,omitempty"`
	IsActive    bool     `json:"is_active"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, required := range permissions {
		if u.HasPermission(required) {
			return true
		}
	}
	return false
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Claims is the signed content of an access token. Permissions is a snapshot
// taken at issuance; the guard never trusts it for authorization decisions.
type Claims struct {
	UserID      int64    `json:"user_id"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies access tokens.
type TokenCodec interface {
	Issue(username string, userID int64, permissions []string) (string, error)
	Decode(tokenString string) (*Claims, error)
}

// ServiceAPI is the surface the HTTP layer consumes.
type ServiceAPI interface {
	Authenticate(dto LoginDTO) (TokenResponse, error)
	Register(dto RegisterDTO) (*User, error)
	ResolveUser(username string) (*User, error)
	DecodeToken(tokenString string) (*Claims, error)
}

// TokenResponse is the login payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
)
