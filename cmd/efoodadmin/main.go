// Package main is the entry point for the eFood admin API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"efoodadmin/internal/cache"
	"efoodadmin/internal/config"
	"efoodadmin/internal/database"
	"efoodadmin/internal/efood"
	"efoodadmin/internal/export"
	"efoodadmin/internal/handlers"
	"efoodadmin/internal/router"
	"efoodadmin/internal/session"
	"efoodadmin/internal/storage"
	"efoodadmin/internal/store"
)

func main() {
	// Load configuration from environment variables (and .env if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"efood_api", cfg.APIBaseURL,
	)

	// Connect to PostgreSQL (expand state + audit log).
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions + catalog cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	catalogCache := cache.NewCatalog(valkeyClient, cfg.CatalogCacheTTL)

	expandStates := store.NewExpandStateStore(db)
	auditLog := store.NewAuditLogStore(db)

	api := efood.New(cfg.APIBaseURL, cfg.APITimeout)

	// S3-compatible object storage is optional; cover uploads answer 503
	// without it.
	var covers handlers.CoverStorage
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		covers = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, cover uploads disabled")
	}

	exporter := export.NewCatalog(logger)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(api, sessionStore)
	categoryHandlers := handlers.NewCategories(api, catalogCache, sessionStore, expandStates, auditLog, covers, exporter)
	rosterHandlers := handlers.NewRosters(api, catalogCache, sessionStore)

	r := router.New(sessionStore, authHandlers, categoryHandlers, rosterHandlers, router.Options{
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: secureCookies,
	})

	// WriteTimeout covers a full upstream round-trip plus an XLSX export.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
