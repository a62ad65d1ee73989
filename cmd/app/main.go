package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joaorhodenntc/encontra-mais/internal/billing"
	"github.com/joaorhodenntc/encontra-mais/internal/billing/abacatepay"
	"github.com/joaorhodenntc/encontra-mais/internal/config"
	"github.com/joaorhodenntc/encontra-mais/internal/db"
	"github.com/joaorhodenntc/encontra-mais/internal/logger"
	"github.com/joaorhodenntc/encontra-mais/internal/notify"
	"github.com/joaorhodenntc/encontra-mais/internal/professional"
	"github.com/joaorhodenntc/encontra-mais/internal/server"
	"github.com/joaorhodenntc/encontra-mais/internal/subscription"
)

// @title Encontra+ API
// @version 1.0
// @description API for the Encontra+ services marketplace and premium subscriptions.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting Encontra+ application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	notifyService := notify.New(
		cfg.RedisAddr,
		cfg.DiscordWebhookPayments,
		cfg.DiscordWebhookVerifications,
	)
	defer notifyService.Close()
	logger.Info("Notification service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifyService.Start(ctx)

	proRepo := professional.NewRepository(database)
	subRepo := subscription.NewRepository(database)

	gateway := abacatepay.New(cfg.AbacatePayAPIKey, cfg.AbacatePayAPIURL)

	billingService := billing.NewService(proRepo, subRepo, gateway, notifyService, cfg.AppURL, cfg.PremiumPriceCents)
	proService := professional.NewService(proRepo, notifyService, cfg.JWTSecret)

	// Optional in-process sweep. Deployments that prefer an external
	// scheduler hit GET /api/subscriptions/expire instead.
	if cfg.ExpireInterval > 0 {
		go runExpirationSweep(ctx, billingService, cfg.ExpireInterval)
	}

	srv := server.New(database, cfg, proService, billingService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func runExpirationSweep(ctx context.Context, svc billing.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireSubscriptions(ctx); err != nil {
				logger.Errorf("Scheduled expiration sweep failed: %v", err)
			}
		}
	}
}
