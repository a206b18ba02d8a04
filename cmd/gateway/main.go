package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/fundreview/internal/api/http"
	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/auth"
	authmw "github.com/mind-engage/fundreview/internal/auth/middleware"
	"github.com/mind-engage/fundreview/internal/backend"
	"github.com/mind-engage/fundreview/internal/config"
	"github.com/mind-engage/fundreview/internal/db"
	"github.com/mind-engage/fundreview/internal/rbac"
	"github.com/mind-engage/fundreview/internal/settings"
	"github.com/mind-engage/fundreview/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()

	users := auth.NewUserRepo(dbh, rbac.ValidRole)
	if err := users.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	events := audit.NewEventRepo(dbh)

	// --- Crowdfunding backend ---
	client := backend.New(backend.Config{
		BaseURL:      cfg.BackendBaseURL,
		TokenURL:     cfg.BackendTokenURL,
		ClientID:     cfg.BackendClientID,
		ClientSecret: cfg.BackendClientSecret,
		Token:        cfg.BackendToken,
		Timeout:      cfg.BackendTimeout,
	})
	if !client.HasToken() {
		log.Printf("backend: no token configured, requests to %s are anonymous", cfg.BackendBaseURL)
	}
	thresholds := settings.NewProvider(client, cfg.DefaultThresholds)
	reg := workflow.NewRegistry(client, thresholds, events)

	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", api.LoginHandler(authSvc, users))
	}

	// Protected API (JWT → role from DB → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Use(authmw.AttachRoleFromDB(users, cfg.Mode == config.ModeOffline))

		mountReviewRoutes(pr, reg, events)
		mountSettingsRoutes(pr, thresholds, events)
		mountUserRoutes(pr, users)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (mode=%s, db=%s, backend=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.BackendBaseURL)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
