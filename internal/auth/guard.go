package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/transport"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// UserFromContext returns the identity the guard resolved for this request.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

// Guard is the request-time authorization gate. Authenticate establishes
// identity from the bearer token and re-resolves the user from the store;
// the Require* constructors enforce per-endpoint policies against that
// freshly resolved identity. Permissions are never read from the token
// snapshot, so a revocation takes effect on the very next request.
type Guard struct {
	*transport.BaseHandler
	service  ServiceAPI
	recorder audit.Recorder
}

func NewGuard(service ServiceAPI, recorder audit.Recorder, logger *slog.Logger) *Guard {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Guard{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
		recorder:    recorder,
	}
}

// Authenticate extracts and decodes the bearer token, loads the live user by
// the subject claim and checks activation. Every failure answers the same
// generic 401 so the response does not reveal whether the token was missing,
// expired, tampered with, or referenced an unknown account. The deactivated
// case is the one deliberate exception, matching a real account the caller
// already proved they own.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := g.ExtractTokenFromHeader(r)
		if token == "" {
			g.WriteError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}

		claims, err := g.service.DecodeToken(token)
		if err != nil {
			g.Logger.Warn("token rejected", "error", err)
			g.WriteError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}

		user, err := g.service.ResolveUser(claims.Subject)
		if err != nil {
			switch err {
			case ErrUserInactive:
				g.Logger.Warn("deactivated account presented valid token", "username", claims.Subject)
				g.WriteError(w, http.StatusUnauthorized, "user account is deactivated")
			default:
				g.Logger.Warn("token subject could not be resolved", "username", claims.Subject, "error", err)
				g.WriteError(w, http.StatusUnauthorized, "invalid authentication credentials")
			}
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission allows the request only if the user's effective
// permission set contains name.
func (g *Guard) RequirePermission(name string) func(http.Handler) http.Handler {
	return g.policy(func(u *User) bool {
		return u.HasPermission(name)
	}, name)
}

// RequireAnyPermission allows the request if the user holds at least one of
// the named permissions.
func (g *Guard) RequireAnyPermission(names ...string) func(http.Handler) http.Handler {
	return g.policy(func(u *User) bool {
		return u.HasAnyPermission(names)
	}, names...)
}

// RequireRole allows the request only if the user is assigned the named
// role. A role the store has never heard of simply never matches; that is a
// forbidden outcome, not a server error.
func (g *Guard) RequireRole(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.WriteError(w, http.StatusUnauthorized, "invalid authentication credentials")
				return
			}

			if !user.HasRole(name) {
				g.Logger.Warn("access denied: role required",
					"user_id", user.ID,
					"required_role", name,
					"user_roles", user.Roles)
				g.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) policy(allowed func(*User) bool, names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.WriteError(w, http.StatusUnauthorized, "invalid authentication credentials")
				return
			}

			if !allowed(user) {
				g.Logger.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", names,
					"user_permissions", user.Permissions)
				g.record(r.Context(), user, names, audit.ActionDenied)
				g.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			g.record(r.Context(), user, names, audit.ActionGranted)
			next.ServeHTTP(w, r)
		})
	}
}

// record logs the outcome against the permission that decided it: the one
// the user holds on a grant, every candidate on a denial.
func (g *Guard) record(ctx context.Context, user *User, names []string, action string) {
	if action == audit.ActionGranted {
		for _, name := range names {
			if user.HasPermission(name) {
				g.recorder.Record(ctx, user.ID, name, action)
				return
			}
		}
		return
	}
	for _, name := range names {
		g.recorder.Record(ctx, user.ID, name, action)
	}
}
