package middleware

import "net/http"

// RequireAdmin restricts access to globally-admin users (user management,
// instance-wide settings). Per-organization and per-project role checks
// are resolved by OrganizationService.RequireRole / ProjectService's
// equivalents inline in handlers, since they depend on a path-scoped
// resource rather than the caller's identity alone.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeJSONError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if !claims.IsAdmin {
			writeJSONError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
