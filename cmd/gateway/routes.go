package main

import (
	"github.com/go-chi/chi/v5"

	api "github.com/mind-engage/fundreview/internal/api/http"
	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/auth"
	rbac "github.com/mind-engage/fundreview/internal/rbac"
	"github.com/mind-engage/fundreview/internal/settings"
	"github.com/mind-engage/fundreview/internal/workflow"
)

// mountReviewRoutes wires the evaluation workflow and project side flows.
func mountReviewRoutes(r chi.Router, reg *workflow.Registry, events audit.Log) {
	r.Route("/projects/{projectID}", func(pr chi.Router) {
		pr.Route("/review", func(rr chi.Router) {
			rr.With(rbac.Require("evaluation:view")).Get("/", api.GetReviewHandler(reg))
			rr.With(rbac.Require("evaluation:view")).
				Get("/components/{componentID}/items", api.GetComponentItemsHandler(reg))
			rr.With(rbac.Require("evaluation:score")).Put("/items/{itemID}", api.ScoreItemHandler(reg))
			rr.With(rbac.Require("evaluation:score")).
				Put("/components/{componentID}/comment", api.CommentHandler(reg))

			rr.With(rbac.Require("project:decide")).Post("/final", api.OpenFinalReviewHandler(reg))
			rr.With(rbac.Require("project:decide")).Delete("/final", api.CancelFinalReviewHandler(reg))
			rr.With(rbac.Require("project:decide")).Post("/decision", api.DecisionHandler(reg))
		})

		pr.With(rbac.Require("project:decide")).Post("/approve-under-review", api.ApproveUnderReviewHandler(reg))
		pr.With(rbac.Require("project:ban")).Post("/ban", api.BanHandler(reg))
		pr.With(rbac.Require("audit:view")).Get("/events", api.ProjectEventsHandler(events))

		pr.With(rbac.Require("phase:payout")).Post("/phases/{phaseID}/payout", api.PayoutHandler(reg))
		pr.With(rbac.Require("phase:refund")).Post("/phases/{phaseID}/refund", api.RefundHandler(reg))
	})

	r.With(rbac.Require("phase:view")).Get("/phases/{phaseID}/investments", api.InvestmentsHandler(reg))
}

func mountSettingsRoutes(r chi.Router, svc *settings.Provider, events audit.Log) {
	r.Route("/settings", func(sr chi.Router) {
		sr.With(rbac.RequireAny("settings:view", "settings:edit")).Get("/", api.ListSettingsHandler(svc))
		sr.With(rbac.RequireAny("settings:view", "settings:edit")).Get("/thresholds", api.ThresholdsHandler(svc))
		sr.With(rbac.Require("settings:edit")).Put("/{settingID}", api.UpdateSettingHandler(svc, events))
	})
}

func mountUserRoutes(r chi.Router, users *auth.UserRepo) {
	r.Route("/users", func(ur chi.Router) {
		ur.With(rbac.Require("users:list")).Get("/", api.ListUsersHandler(users))
		ur.With(rbac.Require("users:create")).Post("/", api.CreateUserHandler(users))
		ur.With(rbac.Require("users:update_role")).Patch("/{userID}/role", api.AdminUpdateUserRoleHandler(users))
		ur.With(rbac.Require("user:change_password")).Post("/change-password", api.ChangePasswordHandler(users))
	})
}
