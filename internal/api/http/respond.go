package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/fundreview/internal/auth"
	"github.com/mind-engage/fundreview/internal/backend"
	"github.com/mind-engage/fundreview/internal/settings"
	"github.com/mind-engage/fundreview/internal/workflow"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeErr maps domain errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	var (
		ge *workflow.GuardError
		ae *backend.APIError
	)
	switch {
	case errors.As(err, &ge):
		writeError(w, http.StatusUnprocessableEntity, ge.Error())
	case errors.Is(err, workflow.ErrLoginRequired), errors.Is(err, backend.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, workflow.ErrLoginRequired.Error())
	case errors.As(err, &ae):
		writeError(w, http.StatusBadGateway, ae.Message)
	case errors.Is(err, settings.ErrInvalidValue), errors.Is(err, auth.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into v and runs struct validation on it.
// It writes the 400 response itself and reports false on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fe.Field()+" must satisfy "+fe.Tag()+"="+fe.Param())
		} else {
			parts = append(parts, fe.Field()+" is "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}
