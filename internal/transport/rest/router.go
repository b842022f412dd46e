package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/rbac"
	"github.com/frahmantamala/user-management/internal/transport/middleware"
	"github.com/frahmantamala/user-management/internal/transport/swagger"
	"github.com/frahmantamala/user-management/internal/user"
)

// RegisterAllRoutes wires the public endpoints (login, health, docs) and the
// token-guarded API. Everything else requires a verified bearer token; user
// administration additionally requires the matching CRUD permission.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/auth/check", authHandler.Check)
			pr.Post("/auth/logout", authHandler.Logout)

			pr.Get("/users/me", userHandler.GetCurrentUser)

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(logger, rbac.PermissionRead))
				ur.Get("/users", userHandler.ListUsers)
				ur.Get("/users/{id}", userHandler.GetUser)
			})

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(logger, rbac.PermissionCreate))
				ur.Post("/users", userHandler.CreateUser)
			})

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(logger, rbac.PermissionUpdate))
				ur.Patch("/users/{id}", userHandler.UpdateUser)
				ur.Put("/users/{id}", userHandler.UpdateUser)
			})

			pr.Group(func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(logger, rbac.PermissionDelete))
				ur.Delete("/users/{id}", userHandler.DeleteUser)
			})
		})
	})
}
