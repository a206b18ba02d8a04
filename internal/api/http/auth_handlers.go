package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mind-engage/fundreview/internal/auth"
	authmw "github.com/mind-engage/fundreview/internal/auth/middleware"
)

// Authenticator checks console credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (auth.User, error)
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *authmw.AuthService, users Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decode(w, r, &req) {
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Username, u.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": tok,
			"username":     u.Username,
			"role":         u.Role,
		}, "")
	}
}
