package auth

import (
	"context"
	"errors"
	"net/http"

	authrepo "github.com/mind-engage/fundreview/internal/auth"
	"github.com/mind-engage/fundreview/internal/rbac"
)

type RoleLookup interface {
	Role(ctx context.Context, idOrUsername string) (string, error)
}

// AttachRoleFromDB replaces the role claim with the stored role, so role
// changes apply before the token expires. allowClaimFallback=true in offline
// mode keeps the claim when the lookup itself fails.
func AttachRoleFromDB(users RoleLookup, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			role, err := users.Role(ctx, sub)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, authrepo.ErrUserNotFound):
				// account deleted since the token was issued
				unauthorized(w, "unknown user")
			case allowClaimFallback && claimRole != "":
				next.ServeHTTP(w, r)
			default:
				forbidden(w)
			}
		})
	}
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"forbidden"}`))
}
