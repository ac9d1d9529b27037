package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-core/config"
	"storefront-core/internal/adapter/catalog"
	httpHandler "storefront-core/internal/adapter/http/handler"
	pgStorage "storefront-core/internal/adapter/storage/postgres"
	redisStorage "storefront-core/internal/adapter/storage/redis"
	"storefront-core/internal/core/ports"
	"storefront-core/internal/service"
	"storefront-core/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Storefront Core")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	requestRepo := pgStorage.NewRequestRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	notificationRepo := pgStorage.NewNotificationRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// External catalog collaborator
	catalogClient := catalog.NewClient(cfg.Catalog, log)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	walletSvc := service.NewWalletService(walletRepo, ledgerRepo, transactor, log)
	auditSvc := service.NewAuditService(auditRepo, log)
	notifier := service.NewNotifyService(notificationRepo, log)

	// Action handlers + approval workflow
	registry := service.NewRegistry(
		service.NewUpdatePriceHandler(catalogClient, log),
		service.NewWithdrawFundsHandler(walletSvc, log),
		service.NewProposeCategoryHandler(catalogClient, log),
	)
	approvalSvc := service.NewApprovalService(
		requestRepo,
		registry,
		service.NewRoleAuthorizer(),
		transactor,
		notifier,
		auditSvc,
		log,
	)
	reportingSvc := service.NewReportingService(requestRepo)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ApprovalSvc:      approvalSvc,
		WalletSvc:        walletSvc,
		ReportingSvc:     reportingSvc,
		NotificationRepo: notificationRepo,
		TokenSvc:         tokenSvc,
		RateLimitStore:   rateLimitStore,
		HealthCheckers:   []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:         auditSvc,
		Logger:           log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
