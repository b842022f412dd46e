package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/user-management/internal/auth"
)

// RequirePermissions guards a route group: the context user must hold at
// least one of the named permissions.
func RequirePermissions(logger *slog.Logger, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				logger.Warn("permission check failed: user not in context", "path", r.URL.Path)
				writeForbidden(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !user.HasAnyPermission(permissions) {
				logger.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"required", permissions,
					"held", user.Permissions)
				writeForbidden(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"status_code":"` + strconv.Itoa(status) + `","status_name":"` + http.StatusText(status) + `","message":"` + message + `"}`))
}
