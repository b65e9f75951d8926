package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-quiz/internal/accounts"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// AttachRoleFromDB replaces the token's role claim with the stored role, and
// rejects tokens whose account no longer exists.
func AttachRoleFromDB(users *accounts.Store, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			acct, err := users.Get(ctx, AccountIDFromContext(ctx))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, acct.Role)))
			case errors.Is(err, accounts.ErrNotFound):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				log.Error("load account", zap.Error(err))
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
