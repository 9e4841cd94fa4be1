package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

// guardService wires the real token codec to an in-memory user table so the
// store can change between issuing a token and presenting it.
type guardService struct {
	codec *JWTTokenCodec
	users map[string]*User
}

func (s *guardService) Authenticate(dto LoginDTO) (TokenResponse, error) {
	u, ok := s.users[dto.Username]
	if !ok {
		return TokenResponse{}, ErrInvalidCredentials
	}
	token, err := s.codec.Issue(u.Username, u.ID, u.Permissions)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *guardService) Register(dto RegisterDTO) (*User, error) {
	return nil, nil
}

func (s *guardService) ResolveUser(username string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return u, nil
}

func (s *guardService) DecodeToken(tokenString string) (*Claims, error) {
	return s.codec.Decode(tokenString)
}

// recordingAudit captures guard audit calls for assertions.
type recordingAudit struct {
	entries []auditEntry
}

type auditEntry struct {
	UserID     int64
	Permission string
	Action     string
}

func (r *recordingAudit) Record(_ context.Context, userID int64, permission, action string) {
	r.entries = append(r.entries, auditEntry{UserID: userID, Permission: permission, Action: action})
}

var _ = ginkgo.Describe("Guard", func() {
	var (
		service  *guardService
		recorder *recordingAudit
		guard    *Guard
		okCalled bool
		okNext   http.Handler
	)

	issueToken := func(username string) string {
		tokens, err := service.Authenticate(LoginDTO{Username: username, Password: "x"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return tokens.AccessToken
	}

	do := func(handler http.Handler, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		service = &guardService{
			codec: NewJWTTokenCodec("test-signing-secret-at-least-32-chars", 30*time.Minute),
			users: map[string]*User{
				"alice": {ID: 1, Username: "alice", IsActive: true, Roles: []string{"user"}, Permissions: []string{"user:read"}},
				"bob":   {ID: 2, Username: "bob", IsActive: true, Roles: []string{"admin"}, Permissions: []string{"user:read", "user:create", "role:read"}},
			},
		}
		recorder = &recordingAudit{}
		guard = NewGuard(service, recorder, nil)

		okCalled = false
		okNext = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			okCalled = true
			w.WriteHeader(http.StatusOK)
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should reject a request without a token", func() {
			rec := do(guard.Authenticate(okNext), "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid authentication credentials"))
			gomega.Expect(okCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should reject a malformed token", func() {
			rec := do(guard.Authenticate(okNext), "garbage")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(okCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should reject an expired token with the same generic message", func() {
			expired := NewJWTTokenCodec("test-signing-secret-at-least-32-chars", -time.Hour)
			token, err := expired.Issue("alice", 1, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := do(guard.Authenticate(okNext), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid authentication credentials"))
		})

		ginkgo.It("should reject a valid token whose subject no longer exists", func() {
			token := issueToken("alice")
			delete(service.users, "alice")

			rec := do(guard.Authenticate(okNext), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid authentication credentials"))
		})

		ginkgo.It("should reject a valid token for a deactivated account with a specific message", func() {
			token := issueToken("alice")
			service.users["alice"].IsActive = false

			rec := do(guard.Authenticate(okNext), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("user account is deactivated"))
		})

		ginkgo.It("should inject the resolved user into the request context", func() {
			var seen *User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			rec := do(guard.Authenticate(next), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.Username).To(gomega.Equal("alice"))
		})
	})

	ginkgo.Describe("RequirePermission", func() {
		protected := func(name string) http.Handler {
			return guard.Authenticate(guard.RequirePermission(name)(okNext))
		}

		ginkgo.It("should allow a user holding the permission", func() {
			rec := do(protected("user:read"), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(okCalled).To(gomega.BeTrue())
		})

		ginkgo.It("should deny a user missing the permission with 403", func() {
			rec := do(protected("user:create"), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("insufficient permissions"))
			gomega.Expect(okCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should treat an unknown permission name as forbidden, not a server error", func() {
			rec := do(protected("no:such"), issueToken("bob"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should enforce the live permission set, not the token snapshot", func() {
			// Token minted while alice still held user:read
			token := issueToken("alice")

			// Permission revoked in the store after issuance
			service.users["alice"].Permissions = nil

			rec := do(protected("user:read"), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(okCalled).To(gomega.BeFalse())
		})

		ginkgo.It("should honor a permission granted after the token was issued", func() {
			token := issueToken("alice")
			service.users["alice"].Permissions = append(service.users["alice"].Permissions, "user:create")

			rec := do(protected("user:create"), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should record a granted outcome", func() {
			do(protected("user:read"), issueToken("alice"))

			gomega.Expect(recorder.entries).To(gomega.HaveLen(1))
			gomega.Expect(recorder.entries[0]).To(gomega.Equal(auditEntry{UserID: 1, Permission: "user:read", Action: "granted"}))
		})

		ginkgo.It("should record a denied outcome", func() {
			do(protected("user:create"), issueToken("alice"))

			gomega.Expect(recorder.entries).To(gomega.HaveLen(1))
			gomega.Expect(recorder.entries[0]).To(gomega.Equal(auditEntry{UserID: 1, Permission: "user:create", Action: "denied"}))
		})
	})

	ginkgo.Describe("RequireAnyPermission", func() {
		protected := func(names ...string) http.Handler {
			return guard.Authenticate(guard.RequireAnyPermission(names...)(okNext))
		}

		ginkgo.It("should allow when the user holds at least one candidate", func() {
			rec := do(protected("user:create", "user:read"), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should deny when the user holds none of the candidates", func() {
			rec := do(protected("user:create", "role:read"), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should record the permission that decided a grant", func() {
			do(protected("user:create", "user:read"), issueToken("alice"))

			gomega.Expect(recorder.entries).To(gomega.HaveLen(1))
			gomega.Expect(recorder.entries[0].Permission).To(gomega.Equal("user:read"))
			gomega.Expect(recorder.entries[0].Action).To(gomega.Equal("granted"))
		})

		ginkgo.It("should record every candidate on a denial", func() {
			do(protected("user:create", "role:read"), issueToken("alice"))

			gomega.Expect(recorder.entries).To(gomega.HaveLen(2))
			gomega.Expect(recorder.entries[0].Action).To(gomega.Equal("denied"))
			gomega.Expect(recorder.entries[1].Action).To(gomega.Equal("denied"))
		})
	})

	ginkgo.Describe("RequireRole", func() {
		protected := func(name string) http.Handler {
			return guard.Authenticate(guard.RequireRole(name)(okNext))
		}

		ginkgo.It("should allow a user assigned the role", func() {
			rec := do(protected("admin"), issueToken("bob"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should deny a user without the role", func() {
			rec := do(protected("admin"), issueToken("alice"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should treat an unknown role name as forbidden", func() {
			rec := do(protected("no-such-role"), issueToken("bob"))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should reflect a role revoked after the token was issued", func() {
			token := issueToken("bob")
			service.users["bob"].Roles = []string{"user"}

			rec := do(protected("admin"), token)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("policy without Authenticate", func() {
		ginkgo.It("should answer 401 when no identity is in the context", func() {
			rec := do(guard.RequirePermission("user:read")(okNext), "")

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(okCalled).To(gomega.BeFalse())
		})
	})
})
