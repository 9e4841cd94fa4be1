package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/access-management/internal/core/datamodel/rbac"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository backed by an in-memory user map
type mockRepository struct {
	users         map[string]*rbac.User
	returnError   bool
	errorToReturn error
}

func newMockRepository() *mockRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.DefaultCost)

	readPerm := rbac.Permission{ID: 1, Name: "user:read"}
	createPerm := rbac.Permission{ID: 2, Name: "user:create"}
	roleRead := rbac.Permission{ID: 3, Name: "role:read"}

	userRole := rbac.Role{ID: 1, Name: "user", Permissions: []rbac.Permission{readPerm}}
	moderatorRole := rbac.Role{ID: 2, Name: "moderator", Permissions: []rbac.Permission{readPerm, createPerm, roleRead}}

	inactive := "inactive@example.com"

	return &mockRepository{
		users: map[string]*rbac.User{
			"alice": {
				ID:           1,
				Username:     "alice",
				PasswordHash: string(hashedPassword),
				IsActive:     true,
				Roles:        []rbac.Role{userRole},
			},
			"bob": {
				ID:           2,
				Username:     "bob",
				PasswordHash: string(hashedPassword),
				IsActive:     true,
				Roles:        []rbac.Role{userRole, moderatorRole},
			},
			"carol": {
				ID:           3,
				Username:     "carol",
				Email:        &inactive,
				PasswordHash: string(hashedPassword),
				IsActive:     false,
				Roles:        []rbac.Role{userRole},
			},
		},
	}
}

func (m *mockRepository) GetByUsername(username string) (*rbac.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.users[username], nil
}

func (m *mockRepository) UsernameExists(username string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	_, exists := m.users[username]
	return exists, nil
}

func (m *mockRepository) EmailExists(email string) (bool, error) {
	if m.returnError {
		return false, m.errorToReturn
	}
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Create(user *rbac.User) error {
	if m.returnError {
		return m.errorToReturn
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.Username] = user
	return nil
}

func (m *mockRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockRepository
		codec    *JWTTokenCodec
		secret   string        = "test-signing-secret-at-least-32-chars"
		ttl      time.Duration = 30 * time.Minute
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockRepository()
		codec = NewJWTTokenCodec(secret, ttl)
		service = NewService(mockRepo, codec, bcrypt.DefaultCost)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a bearer token", func() {
				dto := LoginDTO{Username: "alice", Password: "correct_password"}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.TokenType).To(gomega.Equal("bearer"))
			})

			ginkgo.It("should embed subject, user id and permission snapshot in the token", func() {
				dto := LoginDTO{Username: "alice", Password: "correct_password"}

				tokens, err := service.Authenticate(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.DecodeToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Subject).To(gomega.Equal("alice"))
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
				gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"user:read"}))
				gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(ttl), time.Minute))
			})

			ginkgo.It("should union permissions across roles without duplicates", func() {
				dto := LoginDTO{Username: "bob", Password: "correct_password"}

				tokens, err := service.Authenticate(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.DecodeToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				// user:read is granted by both roles but appears once
				gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"role:read", "user:create", "user:read"}))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return the same error for an unknown username", func() {
				dto := LoginDTO{Username: "nonexistent", Password: "any_password"}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return the same error for a wrong password", func() {
				dto := LoginDTO{Username: "alice", Password: "wrong_password"}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when the account is deactivated", func() {
			ginkgo.It("should refuse to issue a token even with a correct password", func() {
				dto := LoginDTO{Username: "carol", Password: "correct_password"}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty username", func() {
				dto := LoginDTO{Username: "", Password: "password"}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("username is required"))
			})

			ginkgo.It("should return validation error for empty password", func() {
				dto := LoginDTO{Username: "alice", Password: ""}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should surface the failure, not invalid credentials", func() {
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{Username: "alice", Password: "correct_password"}

				_, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err).ToNot(gomega.Equal(ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should create an active account with a bcrypt hash", func() {
			email := "dave@example.com"
			dto := RegisterDTO{Username: "dave", Email: &email, Password: "long_enough_password"}

			u, err := service.Register(dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Username).To(gomega.Equal("dave"))
			gomega.Expect(u.IsActive).To(gomega.BeTrue())

			stored := mockRepo.users["dave"]
			gomega.Expect(stored.PasswordHash).ToNot(gomega.Equal("long_enough_password"))
			err = bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long_enough_password"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject a taken username", func() {
			dto := RegisterDTO{Username: "alice", Password: "long_enough_password"}

			u, err := service.Register(dto)

			gomega.Expect(err).To(gomega.Equal(ErrUsernameTaken))
			gomega.Expect(u).To(gomega.BeNil())
		})

		ginkgo.It("should reject a taken email", func() {
			email := "inactive@example.com"
			dto := RegisterDTO{Username: "newuser", Email: &email, Password: "long_enough_password"}

			u, err := service.Register(dto)

			gomega.Expect(err).To(gomega.Equal(ErrEmailTaken))
			gomega.Expect(u).To(gomega.BeNil())
		})

		ginkgo.It("should reject a short password", func() {
			dto := RegisterDTO{Username: "eve", Password: "short"}

			_, err := service.Register(dto)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("at least 8 characters"))
		})

		ginkgo.It("should allow registering without an email", func() {
			dto := RegisterDTO{Username: "frank", Password: "long_enough_password"}

			u, err := service.Register(dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.Email).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ResolveUser", func() {
		ginkgo.It("should return the live user with roles and permissions", func() {
			u, err := service.ResolveUser("bob")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(u.Roles).To(gomega.ConsistOf("user", "moderator"))
			gomega.Expect(u.Permissions).To(gomega.Equal([]string{"role:read", "user:create", "user:read"}))
		})

		ginkgo.It("should return ErrUserNotFound for an unknown subject", func() {
			u, err := service.ResolveUser("ghost")

			gomega.Expect(err).To(gomega.Equal(ErrUserNotFound))
			gomega.Expect(u).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrUserInactive for a deactivated account", func() {
			u, err := service.ResolveUser("carol")

			gomega.Expect(err).To(gomega.Equal(ErrUserInactive))
			gomega.Expect(u).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("JWTTokenCodec", func() {
	var (
		codec  *JWTTokenCodec
		secret string        = "test-signing-secret-at-least-32-chars"
		ttl    time.Duration = 15 * time.Minute
	)

	ginkgo.BeforeEach(func() {
		codec = NewJWTTokenCodec(secret, ttl)
	})

	ginkgo.Describe("Issue and Decode", func() {
		ginkgo.It("should round-trip claims exactly", func() {
			token, err := codec.Issue("alice", 1, []string{"user:read", "role:read"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := codec.Decode(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Subject).To(gomega.Equal("alice"))
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.Permissions).To(gomega.Equal([]string{"user:read", "role:read"}))
		})

		ginkgo.It("should round-trip an empty permission snapshot", func() {
			token, err := codec.Issue("alice", 1, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := codec.Decode(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Permissions).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Decode", func() {
		ginkgo.It("should return ErrTokenExpired for an expired token", func() {
			expiredCodec := NewJWTTokenCodec(secret, -1*time.Hour)
			token, err := expiredCodec.Issue("alice", 1, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := codec.Decode(token)
			gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrInvalidToken for a token signed with another secret", func() {
			otherCodec := NewJWTTokenCodec("a-completely-different-32-char-secret", ttl)
			token, err := otherCodec.Issue("alice", 1, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := codec.Decode(token)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrInvalidToken for a tampered payload", func() {
			token, err := codec.Issue("alice", 1, []string{"user:read"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			tampered := token[:len(token)-4] + "AAAA"

			claims, err := codec.Decode(tampered)
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrInvalidToken for a malformed token", func() {
			claims, err := codec.Decode("not.a.token")
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})

		ginkgo.It("should return ErrInvalidToken for an empty token", func() {
			claims, err := codec.Decode("")
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
			gomega.Expect(claims).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("EffectivePermissions", func() {
	ginkgo.It("should union and sort permission names across roles", func() {
		u := &rbac.User{
			Roles: []rbac.Role{
				{Name: "a", Permissions: []rbac.Permission{{Name: "user:read"}, {Name: "user:create"}}},
				{Name: "b", Permissions: []rbac.Permission{{Name: "user:read"}, {Name: "role:read"}}},
			},
		}

		gomega.Expect(EffectivePermissions(u)).To(gomega.Equal([]string{"role:read", "user:create", "user:read"}))
	})

	ginkgo.It("should return an empty set for a user with no roles", func() {
		gomega.Expect(EffectivePermissions(&rbac.User{})).To(gomega.BeEmpty())
	})

	ginkgo.It("should return an empty set for roles with no permissions", func() {
		u := &rbac.User{Roles: []rbac.Role{{Name: "empty"}}}
		gomega.Expect(EffectivePermissions(u)).To(gomega.BeEmpty())
	})
})
