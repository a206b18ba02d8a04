package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/fundreview/internal/scoring"
	"github.com/mind-engage/fundreview/internal/workflow"
)

func projectID(r *http.Request) string { return strings.TrimSpace(chi.URLParam(r, "projectID")) }

// GET /projects/{projectID}/review[?view=founder]
func GetReviewHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") == "founder" {
			comps, err := reg.Session(projectID(r)).FounderView(r.Context())
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"components": comps,
				"totals":     scoring.Aggregate(comps),
				"breakdown":  scoring.Breakdown(comps),
			}, "")
			return
		}
		s, err := reg.Load(r.Context(), projectID(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), "")
	}
}

// GET /projects/{projectID}/review/components/{componentID}/items
func GetComponentItemsHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		compID := strings.TrimSpace(chi.URLParam(r, "componentID"))
		items, err := reg.Session(projectID(r)).LoadItems(r.Context(), compID)
		if err != nil {
			writeErr(w, err)
			return
		}
		type itemOut struct {
			ID                 string    `json:"id"`
			BasicRequirement   string    `json:"basicRequirement"`
			EvaluationCriteria string    `json:"evaluationCriteria"`
			MaxPoint           float64   `json:"maxPoint"`
			ActualPoint        *float64  `json:"actualPoint"`
			AllowedPoints      []float64 `json:"allowedPoints"`
		}
		out := make([]itemOut, 0, len(items))
		for _, it := range items {
			out = append(out, itemOut{
				ID:                 it.ID,
				BasicRequirement:   it.BasicRequirement,
				EvaluationCriteria: it.EvaluationCriteria,
				MaxPoint:           it.MaxPoint,
				ActualPoint:        it.ActualPoint,
				AllowedPoints:      scoring.AllowedPoints(it.MaxPoint),
			})
		}
		writeJSON(w, http.StatusOK, out, "")
	}
}

type scoreItemReq struct {
	Point *float64 `json:"point" validate:"required"`
}

// PUT /projects/{projectID}/review/items/{itemID}
func ScoreItemHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreItemReq
		if !decode(w, r, &req) {
			return
		}
		s := reg.Session(projectID(r))
		if err := s.ScoreItem(r.Context(), chi.URLParam(r, "itemID"), *req.Point); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), "")
	}
}

type commentReq struct {
	Comment string `json:"comment" validate:"max=5000"`
}

// PUT /projects/{projectID}/review/components/{componentID}/comment
func CommentHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commentReq
		if !decode(w, r, &req) {
			return
		}
		s := reg.Session(projectID(r))
		if err := s.CommentComponent(r.Context(), chi.URLParam(r, "componentID"), req.Comment); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), "")
	}
}

// POST /projects/{projectID}/review/final
func OpenFinalReviewHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := reg.Session(projectID(r)).OpenFinalReview(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum, "")
	}
}

// DELETE /projects/{projectID}/review/final
func CancelFinalReviewHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := reg.Session(projectID(r))
		if err := s.CancelFinalReview(); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), "")
	}
}

type decisionReq struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"max=2000"`
}

// POST /projects/{projectID}/review/decision
func DecisionHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decisionReq
		if !decode(w, r, &req) {
			return
		}
		s := reg.Session(projectID(r))
		msg, err := s.Submit(r.Context(), workflow.Decision{Action: workflow.Action(req.Decision), Reason: req.Reason})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot(), msg)
	}
}
