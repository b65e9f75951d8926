package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Permissions lists everything the default policy grants role.
func Permissions(role string) []string {
	return defaultChecker.Grants(role, AllPermissions)
}

// Require enforces a single permission against the role in the request context.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !defaultChecker.Has(role, perm) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
