package middleware

import (
	"net/http"

	"clinic-backend/internal/domain/entity"
	"clinic-backend/pkg/response"
)

// RequireRole gates a route on the principal's role tag. The response is
// always FORBIDDEN with a human-readable reason; it never leaks whether the
// target resource exists.
func RequireRole(allowedRoles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "You are not logged in or your session has expired")
				return
			}

			for _, role := range allowedRoles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You do not have permission to perform this action")
		})
	}
}

// Coarse capability gates.

// RequireStaff passes super-admins and receptionists.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(entity.RoleSuperAdmin, entity.RoleReceptionist)(next)
}

// RequirePatient passes patients only.
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RolePatient)(next)
}

// RequireSuperAdmin passes super-admins only.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleSuperAdmin)(next)
}
