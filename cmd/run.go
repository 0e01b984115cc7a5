package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"satsdice/application"
	"satsdice/config"
	"satsdice/database"
	"satsdice/domain/interfaces"
	"satsdice/domain/services"
	"satsdice/infrastructure"
	"satsdice/repository"
	"satsdice/server"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting satsdice...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NatsURL)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsClient.Close()

	// Repositories
	linkRepo := repository.NewDiceLinkRepository(db)
	paymentRepo := repository.NewDicePaymentRepository(db)
	withdrawRepo := repository.NewWithdrawRepository(db)
	settingsRepo := repository.NewCoinflipSettingsRepository(db)
	gameRepo := repository.NewCoinflipGameRepository(db)

	// Event publishing, with recent outcomes cached for the polling endpoints
	natsPublisher := infrastructure.NewNATSEventPublisher(natsClient)
	if err := natsPublisher.EnsureWagerEventStream(); err != nil {
		return fmt.Errorf("failed to ensure wager event stream: %w", err)
	}
	var publisher interfaces.EventPublisher = natsPublisher
	var cache *infrastructure.OutcomeCache
	if cfg.RedisAddr != "" {
		cache = infrastructure.NewOutcomeCache(cfg.RedisAddr, cfg.RedisPassword, natsPublisher)
		if err := cache.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer cache.Close()
		publisher = cache
	}

	// External services
	payments := infrastructure.NewWalletPaymentClient(natsClient)
	resolver := infrastructure.NewLnurlAddressResolver()

	// Domain services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	withdrawService := services.NewWithdrawService(withdrawRepo, payments, publisher)
	diceService := services.NewDiceService(linkRepo, paymentRepo, withdrawService, payments, publisher, rng)
	coinflipService := services.NewCoinflipService(settingsRepo, gameRepo, withdrawService, payments, resolver, publisher, rng)

	// Settlement pipeline
	dispatcher := application.NewDispatcher(diceService, coinflipService, cfg.DispatcherShards)
	// Settlements must not be cancelled by the shutdown signal; Stop drains
	// them instead.
	dispatcher.Start(context.WithoutCancel(ctx))

	consumer := infrastructure.NewPaymentConsumer(natsClient, dispatcher)
	if err := consumer.Start(); err != nil {
		return fmt.Errorf("failed to start payment consumer: %w", err)
	}

	// HTTP surface
	httpServer := server.New(diceService, coinflipService, withdrawService, dispatcher, cache, cfg.PublicURL)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start(cfg.ListenAddr)
	}()

	log.WithField("environment", cfg.Environment).Info("satsdice is running")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	// Stop accepting events, then drain in-flight settlements including any
	// outbound payouts.
	dispatcher.Stop()

	log.Info("Shutdown completed")
	return nil
}
