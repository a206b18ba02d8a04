package http

import (
	"context"
	"net/http"

	"github.com/mind-engage/fundreview/internal/auth"
)

// UserStore is the account storage behind the users endpoints.
type UserStore interface {
	Create(ctx context.Context, username, password, role string) (auth.User, error)
	List(ctx context.Context, role string) ([]auth.User, error)
	UpdateRole(ctx context.Context, target, role string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type createUserReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin manager"`
}

// POST /users
func CreateUserHandler(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if !decode(w, r, &req) {
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u, "User created")
	}
}

// GET /users[?role=manager]
func ListUsersHandler(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), r.URL.Query().Get("role"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list, "")
	}
}
