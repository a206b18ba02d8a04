package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/fundreview/internal/auth"
)

type updateUserRoleReq struct {
	Role string `json:"role" validate:"required,oneof=admin manager"`
}

// PATCH /users/{userID}/role
func AdminUpdateUserRoleHandler(users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := chi.URLParam(r, "userID") // id or username
		if target == "" {
			writeError(w, http.StatusBadRequest, "missing userID")
			return
		}
		var req updateUserRoleReq
		if !decode(w, r, &req) {
			return
		}
		err := users.UpdateRole(r.Context(), target, req.Role)
		if errors.Is(err, auth.ErrLastAdmin) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
