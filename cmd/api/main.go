package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/baseproject/baseproject-go/internal/config"
	"github.com/baseproject/baseproject-go/internal/crypto"
	"github.com/baseproject/baseproject-go/internal/handler"
	"github.com/baseproject/baseproject-go/internal/middleware"
	"github.com/baseproject/baseproject-go/internal/migrations"
	"github.com/baseproject/baseproject-go/internal/model"
	"github.com/baseproject/baseproject-go/internal/repository"
	"github.com/baseproject/baseproject-go/internal/service"
)

const resetPurgeInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("mysql"); err != nil {
		slog.Error("setting migration dialect failed", "error", err)
		os.Exit(1)
	}
	if err := goose.Up(db, "."); err != nil {
		slog.Error("running migrations failed", "error", err)
		os.Exit(1)
	}

	hasher := crypto.NewHasher()
	issuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)

	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewResetRepository(db, cfg.ResetTokenTTL)

	users := service.NewUserDirectory(userRepo, hasher)
	authService := service.NewAuthService(users, hasher, issuer, resetRepo)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db)
	usersResource := handler.NewResourceHandler[*model.User](userRepo, func() *model.User { return &model.User{} })

	// Expired reset tokens are garbage only; sweep them in the background.
	go func() {
		for {
			time.Sleep(resetPurgeInterval)
			purged, err := resetRepo.PurgeExpired(context.Background())
			if err != nil {
				slog.Warn("purging expired reset tokens failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("purged expired reset tokens", "count", purged)
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/v1/db/ping", healthHandler.HandlePing)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/register", authHandler.HandleRegister)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
		r.Post("/api/v1/auth/request-reset-password", authHandler.HandleRequestReset)
		r.Post("/api/v1/auth/confirm-reset-password", authHandler.HandleConfirmReset)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(issuer))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)
		r.Route("/api/v1/users", usersResource.Mount)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
