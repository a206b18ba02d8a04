package http

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/scoring"
	"github.com/mind-engage/fundreview/internal/settings"
)

// SettingsService is the part of settings.Provider the handlers use.
type SettingsService interface {
	All(ctx context.Context) ([]settings.GlobalSetting, error)
	Thresholds(ctx context.Context) (scoring.Thresholds, error)
	Update(ctx context.Context, id string, t settings.Type, value float64) (settings.GlobalSetting, error)
}

// GET /settings
func ListSettingsHandler(svc SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.All(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list, "")
	}
}

// GET /settings/thresholds
func ThresholdsHandler(svc SettingsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.Thresholds(r.Context())
		msg := ""
		if err != nil {
			// still usable; the dashboard shows that defaults are in effect
			msg = "using default thresholds"
		}
		writeJSON(w, http.StatusOK, t, msg)
	}
}

type updateSettingReq struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value" validate:"required"`
}

// PUT /settings/{settingID}
// type may be omitted; it is then looked up from the current settings.
func UpdateSettingHandler(svc SettingsService, events audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "settingID"))
		var req updateSettingReq
		if !decode(w, r, &req) {
			return
		}
		typ := settings.Type(strings.ToUpper(strings.TrimSpace(req.Type)))
		if typ == "" {
			list, err := svc.All(r.Context())
			if err != nil {
				writeErr(w, err)
				return
			}
			for _, s := range list {
				if s.ID == id {
					typ = s.Type
					break
				}
			}
			if typ == "" {
				writeError(w, http.StatusNotFound, "setting not found")
				return
			}
		}
		gs, err := svc.Update(r.Context(), id, typ, *req.Value)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := events.Append(context.WithoutCancel(r.Context()), audit.Event{
			Type:  audit.SettingUpdated,
			Actor: audit.ActorFromContext(r.Context()),
			Data:  audit.Data(map[string]any{"id": id, "type": typ, "value": *req.Value}),
		}); err != nil {
			log.Printf("audit setting %s: %v", id, err)
		}
		writeJSON(w, http.StatusOK, gs, "Setting updated")
	}
}
