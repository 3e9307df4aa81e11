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
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sweetcrumb/cakeshop-api/internal/background"
	"github.com/sweetcrumb/cakeshop-api/internal/config"
	"github.com/sweetcrumb/cakeshop-api/internal/database"
	"github.com/sweetcrumb/cakeshop-api/internal/handlers"
	middlewareCustom "github.com/sweetcrumb/cakeshop-api/internal/middleware"
	"github.com/sweetcrumb/cakeshop-api/internal/repositories"
	"github.com/sweetcrumb/cakeshop-api/internal/routes"
	"github.com/sweetcrumb/cakeshop-api/internal/services"
	pkgauth "github.com/sweetcrumb/cakeshop-api/pkg/auth"
	pkghttp "github.com/sweetcrumb/cakeshop-api/pkg/http"
	pkglogger "github.com/sweetcrumb/cakeshop-api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Run migrations before opening the pool
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(&cfg.Database, logger); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	attemptRepo := repositories.NewAttemptRepository(db)

	// Admin secret
	secret, err := pkgauth.NewSecret(cfg.Admin.Pin, cfg.Admin.PinHash)
	if err != nil {
		logger.Error("failed to load admin secret", slog.Any("error", err))
		os.Exit(1)
	}

	// PIN validation service
	lockoutConfig := services.LockoutConfig{
		MaxAttempts:     cfg.Admin.MaxAttempts,
		LockoutDuration: cfg.Admin.LockoutDuration,
	}
	pinService := services.NewPinService(attemptRepo, secret, lockoutConfig, logger)

	// Audit logging
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{}
	pinHandler := handlers.NewPinHandler(pinService, auditLogger, ipConfig)

	// Lockout monitor
	lockoutMonitor := background.NewLockoutMonitor(attemptRepo, logger, cfg.Admin.MonitorInterval)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, pinHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start lockout monitor
	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	defer monitorCancel()

	go lockoutMonitor.Start(monitorCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	monitorCancel()
	lockoutMonitor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
