package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-management/internal/auth"
	"github.com/frahmantamala/access-management/internal/permission"
	"github.com/frahmantamala/access-management/internal/role"
	"github.com/frahmantamala/access-management/internal/transport/middleware"
	"github.com/frahmantamala/access-management/internal/transport/swagger"
	"github.com/frahmantamala/access-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RegisterAllRoutes wires every handler behind the guard. Management routes
// require the matching resource:action permission; /users/me only requires a
// valid token.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, guard *auth.Guard, authHandler *auth.Handler, userHandler *user.Handler, roleHandler *role.Handler, permissionHandler *permission.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", authHandler.Register)
			sr.Post("/login", authHandler.Login)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(guard.Authenticate)

			// Current user
			pr.Get("/users/me", authHandler.Me)

			// User management routes
			pr.Route("/users", func(ur chi.Router) {
				ur.With(guard.RequirePermission(auth.PermUserRead)).Get("/", userHandler.List)
				ur.With(guard.RequirePermission(auth.PermUserCreate)).Post("/", userHandler.Create)
				ur.With(guard.RequirePermission(auth.PermUserRead)).Get("/{id}", userHandler.Get)
				ur.With(guard.RequirePermission(auth.PermUserUpdate)).Put("/{id}", userHandler.Update)
				ur.With(guard.RequirePermission(auth.PermUserDelete)).Delete("/{id}", userHandler.Delete)

				// Role assignment rides on user:update
				ur.With(guard.RequirePermission(auth.PermUserUpdate)).Post("/{id}/roles/{roleID}", userHandler.AssignRole)
				ur.With(guard.RequirePermission(auth.PermUserUpdate)).Delete("/{id}/roles/{roleID}", userHandler.RemoveRole)
			})

			// Role management routes
			pr.Route("/roles", func(rr chi.Router) {
				rr.With(guard.RequirePermission(auth.PermRoleRead)).Get("/", roleHandler.List)
				rr.With(guard.RequirePermission(auth.PermRoleCreate)).Post("/", roleHandler.Create)
				rr.With(guard.RequirePermission(auth.PermRoleRead)).Get("/{id}", roleHandler.Get)
				rr.With(guard.RequirePermission(auth.PermRoleUpdate)).Put("/{id}", roleHandler.Update)
				rr.With(guard.RequirePermission(auth.PermRoleDelete)).Delete("/{id}", roleHandler.Delete)

				// Permission grants ride on role:update
				rr.With(guard.RequirePermission(auth.PermRoleUpdate)).Post("/{id}/permissions/{permissionID}", roleHandler.AddPermission)
				rr.With(guard.RequirePermission(auth.PermRoleUpdate)).Delete("/{id}/permissions/{permissionID}", roleHandler.RemovePermission)
			})

			// Permission management routes
			pr.Route("/permissions", func(pmr chi.Router) {
				pmr.With(guard.RequirePermission(auth.PermPermissionRead)).Get("/", permissionHandler.List)
				pmr.With(guard.RequirePermission(auth.PermPermissionCreate)).Post("/", permissionHandler.Create)
				pmr.With(guard.RequirePermission(auth.PermPermissionRead)).Get("/{id}", permissionHandler.Get)
				pmr.With(guard.RequirePermission(auth.PermPermissionUpdate)).Put("/{id}", permissionHandler.Update)
				pmr.With(guard.RequirePermission(auth.PermPermissionDelete)).Delete("/{id}", permissionHandler.Delete)
			})
		})
	})
}
