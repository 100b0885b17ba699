// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command notary runs the notary back-office API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/notary-go/internal/cache"
	"github.com/olegiv/notary-go/internal/config"
	"github.com/olegiv/notary-go/internal/geoip"
	"github.com/olegiv/notary-go/internal/handler"
	"github.com/olegiv/notary-go/internal/i18n"
	"github.com/olegiv/notary-go/internal/locale"
	"github.com/olegiv/notary-go/internal/logging"
	"github.com/olegiv/notary-go/internal/middleware"
	"github.com/olegiv/notary-go/internal/scheduler"
	"github.com/olegiv/notary-go/internal/service"
	"github.com/olegiv/notary-go/internal/session"
	"github.com/olegiv/notary-go/internal/store"
	"github.com/olegiv/notary-go/internal/translate"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("notary %s\n", version)
		return
	}

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o750); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Now that the database is up, route WARN and above into the events table.
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), db))
	slog.SetDefault(logger)

	queries := store.New(db)
	ctx := context.Background()

	if cfg.DoSeed {
		if err := store.Seed(ctx, queries, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	reg, err := locale.NewRegistry(cfg.Locales, cfg.BaseLocale)
	if err != nil {
		return fmt.Errorf("building locale registry: %w", err)
	}

	appCache := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxEntries: cfg.CacheMaxSize,
	}, logger)
	languages := cache.NewLanguages(appCache, queries, time.Duration(cfg.CacheTTL)*time.Second)

	translator := i18n.NewTranslator(cfg.BaseLocale, logger)

	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			logger.Warn("geoip disabled", "source", "geoip", "error", err)
		}
	}
	defer geo.Close()

	var translateSvc translate.Service
	if cfg.TranslationEnabled() {
		translateSvc = translate.NewOpenAIService(cfg.OpenAIKey, cfg.OpenAIModel)
		logger.Info("machine translation enabled", "model", cfg.OpenAIModel)
	}

	media := service.NewMediaService(db, cfg.UploadsDir, logger)

	sessions := session.New(db, cfg.IsDevelopment())

	h := handler.NewHandler(handler.Deps{
		DB:         db,
		Sessions:   sessions,
		Translator: translator,
		Languages:  languages,
		Media:      media,
		Registry:   reg,
		Translate:  translateSvc,
		GeoIP:      geo,
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		SiteName:   cfg.SiteName,
		Logger:     logger,
	})

	sched := scheduler.New(db, geo, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := newRouter(cfg, h, sessions, db)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listening: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newRouter assembles the middleware chain and all routes.
func newRouter(cfg *config.Config, h *handler.Handler, sessions *scs.SessionManager, db *sql.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessions.LoadAndSave)

	// The public contact form is posted cross-origin from the marketing site,
	// so it is exempt from the CSRF check.
	r.Use(middleware.SkipCSRF("/api/public/messages"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	apiLimiter := middleware.NewRateLimiter(100, 200)
	authLimiter := middleware.NewRateLimiter(1, 10)
	publicLimiter := middleware.NewRateLimiter(10, 20)

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(publicLimiter.Middleware())
		r.Post("/api/public/messages", h.IntakeMessage)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware())
			r.Use(middleware.Auth(sessions))
			r.Use(middleware.LoadUser(sessions, db))

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.ListPosts)
				r.Post("/", h.CreatePost)
				r.Get("/{id}", h.GetPost)
				r.Put("/{id}", h.UpdatePost)
				r.Delete("/{id}", h.DeletePost)
				r.Post("/{id}/publish", h.PublishPost)
				r.Post("/{id}/translate", h.TranslatePost)
			})

			r.Get("/languages", h.ListLanguages)

			r.Route("/notaries", func(r chi.Router) {
				r.Get("/", h.ListNotaries)
				r.Post("/", h.CreateNotary)
				r.Get("/{id}", h.GetNotary)
				r.Put("/{id}", h.UpdateNotary)
				r.Delete("/{id}", h.DeleteNotary)
			})

			r.Route("/services", func(r chi.Router) {
				r.Get("/", h.ListServices)
				r.Post("/", h.CreateService)
				r.Get("/{id}", h.GetService)
				r.Put("/{id}", h.UpdateService)
				r.Delete("/{id}", h.DeleteService)
				r.Post("/{id}/options", h.CreateServiceOption)
				r.Put("/{id}/options/{optionID}", h.UpdateServiceOption)
				r.Delete("/{id}/options/{optionID}", h.DeleteServiceOption)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.ListClients)
				r.Post("/", h.CreateClient)
				r.Get("/{id}", h.GetClient)
				r.Put("/{id}", h.UpdateClient)
				r.Delete("/{id}", h.DeleteClient)
			})

			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", h.ListSubmissions)
				r.Post("/", h.CreateSubmission)
				r.Get("/{id}", h.GetSubmission)
				r.Put("/{id}", h.UpdateSubmission)
				r.Delete("/{id}", h.DeleteSubmission)
				r.Post("/{id}/status", h.UpdateSubmissionStatus)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", h.ListPayments)
				r.Post("/", h.CreatePayment)
				r.Get("/{id}", h.GetPayment)
				r.Post("/{id}/status", h.UpdatePaymentStatus)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", h.ListMessages)
				r.Get("/{id}", h.GetMessage)
				r.Post("/{id}/read", h.MarkMessageRead)
				r.Post("/{id}/archive", h.ArchiveMessage)
				r.Delete("/{id}", h.DeleteMessage)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", h.ListMedia)
				r.Post("/", h.UploadMedia)
				r.Get("/{id}", h.GetMedia)
				r.Put("/{id}/alt", h.UpdateMediaAltText)
				r.Delete("/{id}", h.DeleteMedia)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Post("/languages", h.CreateLanguage)
				r.Put("/languages/{id}", h.UpdateLanguage)
				r.Post("/languages/{id}/default", h.SetDefaultLanguage)
				r.Delete("/languages/{id}", h.DeleteLanguage)

				r.Get("/users", h.ListUsers)
				r.Post("/users", h.CreateUser)

				r.Get("/events", h.ListEvents)

				r.Post("/admin/export", h.Export)
				r.Post("/admin/import", h.Import)
				r.Post("/admin/import/legacy", h.ImportLegacy)
			})
		})
	})

	// Uploaded media is immutable once written, so clients may cache it hard.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.With(middleware.StaticCache(31536000)).Get("/uploads/*", uploads.ServeHTTP)

	return r
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
