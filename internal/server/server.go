// Package server wires the application together: database, services,
// handlers, middleware, and routes.
//
// This is the composition root — every dependency is constructed and
// connected here, in one place. main.go stays minimal: load config, build
// a Server, call Start.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB → repositories
//	                          → services (auth, club, passport)
//	                          → handlers
//	                          → chi router
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handler layer
// knows HTTP exists.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hackclub/food-passport/internal/auth"
	"github.com/hackclub/food-passport/internal/config"
	"github.com/hackclub/food-passport/internal/directory"
	"github.com/hackclub/food-passport/internal/handler"
	"github.com/hackclub/food-passport/internal/middleware"
	sqliteRepo "github.com/hackclub/food-passport/internal/repository/sqlite"
	"github.com/hackclub/food-passport/internal/service"
	"github.com/hackclub/food-passport/internal/storage"
)

// Server owns the router, the database connection, and the graceful
// shutdown sequence. The database is closed when Start returns.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph and the route table.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes constructs services and handlers and binds them to routes.
//
// ROUTE STRUCTURE:
//
//	GET    /auth/slack/login       → redirect to Slack authorization
//	GET    /auth/slack/callback    → complete OAuth, set session cookie
//	POST   /auth/logout            → clear session cookie
//	GET    /healthz                → liveness probe
//
//	(session required)
//	GET    /api/me                 → current user's profile with club
//	POST   /api/clubs              → create a club, creator joins it
//	POST   /api/clubs/join         → join by code
//	GET    /api/clubs/lookup       → directory prefill for a join code
//	GET    /api/workshops          → visible workshops + own submissions
//	POST   /api/submissions        → submit a workshop (multipart)
//
//	(admin role required)
//	GET    /api/admin/submissions
//	GET    /api/admin/clubs
//	DELETE /api/admin/submissions/{userID}/{workshopID}
//	DELETE /api/admin/clubs/{id}
//	GET    /uploads/{ref}          → stored submission photos
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	photos, err := storage.NewPhotoStore(s.cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("creating photo store: %w", err)
	}

	slack := auth.NewSlackProvider(s.cfg.SlackClientID, s.cfg.SlackClientSecret, s.cfg.SlackCallbackURL)
	if !slack.Configured() {
		s.logger.Warn("slack oauth not configured — logins will fail with config_error")
	}

	// nil when no API key is set; the club service treats that as
	// "lookups always miss"
	dir := directory.New(s.cfg.HackClubAPIURL, s.cfg.HackClubAPIKey, s.logger)

	authSvc := service.NewAuthService(s.db.Users(), tokens, s.cfg.AdminIDs(), s.logger)
	clubSvc := service.NewClubService(s.db.Users(), s.db.Clubs(), dir, s.logger)
	passportSvc := service.NewPassportService(s.db.Users(), s.db.Workshops(), s.db.Submissions(), photos, s.logger)

	authH := handler.NewAuthHandler(slack, authSvc, clubSvc, s.cfg.Production(), s.logger)
	clubH := handler.NewClubHandler(clubSvc, s.logger)
	passportH := handler.NewPassportHandler(passportSvc, s.logger)
	adminH := handler.NewAdminHandler(clubSvc, passportSvc, s.logger)

	// Middleware order matters: request ID first so the logger can see it,
	// recoverer last so panics in handlers still get logged as requests.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Get("/auth/slack/login", authH.HandleSlackLogin)
	s.router.Get("/auth/slack/callback", authH.HandleSlackCallback)
	s.router.Post("/auth/logout", authH.HandleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/api/me", authH.HandleMe)
		r.Post("/api/clubs", clubH.HandleCreate)
		r.Post("/api/clubs/join", clubH.HandleJoin)
		r.Get("/api/clubs/lookup", clubH.HandleLookup)
		r.Get("/api/workshops", passportH.HandleList)
		r.Post("/api/submissions", passportH.HandleSubmit)

		r.Group(func(r chi.Router) {
			// RequireAdmin re-reads the role from the database per
			// request, so revoking admin takes effect immediately.
			r.Use(auth.RequireAdmin(clubSvc))

			r.Get("/api/admin/submissions", adminH.HandleListSubmissions)
			r.Get("/api/admin/clubs", adminH.HandleListClubs)
			r.Delete("/api/admin/submissions/{userID}/{workshopID}", adminH.HandleDeleteSubmission)
			r.Delete("/api/admin/clubs/{id}", adminH.HandleDeleteClub)
			r.Get("/uploads/{ref}", adminH.HandlePhoto)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // photo uploads need headroom
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.Env),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
