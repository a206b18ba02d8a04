package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/workflow"
)

// POST /projects/{projectID}/approve-under-review
func ApproveUnderReviewHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := reg.ApproveUnderReview(r.Context(), projectID(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, msg)
	}
}

type banReq struct {
	Confirm bool   `json:"confirm"`
	Reason  string `json:"reason" validate:"max=2000"`
}

// POST /projects/{projectID}/ban
func BanHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req banReq
		if !decode(w, r, &req) {
			return
		}
		msg, err := reg.Ban(r.Context(), projectID(r), req.Confirm, req.Reason)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, msg)
	}
}

// POST /projects/{projectID}/phases/{phaseID}/payout
func PayoutHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := reg.Payout(r.Context(), projectID(r), chi.URLParam(r, "phaseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, msg)
	}
}

type refundReq struct {
	Confirm bool `json:"confirm"`
}

// POST /projects/{projectID}/phases/{phaseID}/refund
func RefundHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refundReq
		if !decode(w, r, &req) {
			return
		}
		msg, err := reg.Refund(r.Context(), projectID(r), chi.URLParam(r, "phaseID"), req.Confirm)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nil, msg)
	}
}

// GET /phases/{phaseID}/investments
func InvestmentsHandler(reg *workflow.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := reg.Investments(r.Context(), strings.TrimSpace(chi.URLParam(r, "phaseID")))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list, "")
	}
}

// GET /projects/{projectID}/events?limit=50
func ProjectEventsHandler(events audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 500 {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}
		list, err := events.ListByProject(r.Context(), projectID(r), limit)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list, "")
	}
}
