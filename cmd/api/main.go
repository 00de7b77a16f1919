// Package main is the entry point for the Travel Companion API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tiagobluiz/travel-companion/internal/auth"
	"github.com/tiagobluiz/travel-companion/internal/config"
	"github.com/tiagobluiz/travel-companion/internal/handler"
	"github.com/tiagobluiz/travel-companion/internal/middleware"
	"github.com/tiagobluiz/travel-companion/internal/repo"
	"github.com/tiagobluiz/travel-companion/internal/service"
	"github.com/tiagobluiz/travel-companion/migrations"
	"github.com/tiagobluiz/travel-companion/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		// goose speaks database/sql; borrow a *sql.DB backed by the same pool.
		sqlDB := stdlib.OpenDBFromPool(pool)
		applied, err := migrations.Up(context.Background(), sqlDB)
		_ = sqlDB.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied", "count", len(applied))
	}

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	auditRepo := repo.NewAuditRepo(pool)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	})

	auditSvc := service.NewAuditService(auditRepo, logger)
	tripSvc := service.NewTripService(tripRepo, auditSvc, logger)
	itinerarySvc := service.NewItineraryService(tripRepo, auditSvc, logger)
	inviteSvc := service.NewInviteService(tripRepo, userRepo, auditSvc, logger)
	authSvc := service.NewAuthService(userRepo, inviteSvc, tokens, auditSvc, logger)

	api := handler.NewServer(handler.Services{
		Trips:     tripSvc,
		Itinerary: itinerarySvc,
		Invites:   inviteSvc,
		Auth:      authSvc,
		Audit:     auditSvc,
	}, spec.OpenAPI, logger)

	// --- Router -----------------------------------------------------------
	// Middleware order matters:
	// CORS answers preflights before anything else sees them.
	// Authenticator runs before SlogLogger so the request log carries actor_id.
	// Recoverer sits innermost so a panic still produces a logged 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewAuthenticator(tokens, logger))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
