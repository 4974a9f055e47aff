package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"tender-docs/internal/adapters/eventbroker/nats"
	"tender-docs/internal/adapters/repository/postgres"
	"tender-docs/internal/adapters/storage/driver"
	"tender-docs/internal/config"
	"tender-docs/internal/core/service/reconcile"
	"tender-docs/internal/logger"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Dev:       !cfg.Env.IsProd(),
		Level:     cfg.Log.Level,
		SentryDSN: cfg.Log.SentryDSN,
	})
	defer logger.Flush()

	if cfg.NATS.URL == "" {
		log.Error("NATS_URL is required for the reconciler")
		os.Exit(1)
	}

	// Initialize database
	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		log.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()
	log.Info("db connection established")

	storage, err := driver.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init object storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	log.Info("object storage initialized", "driver", cfg.Storage.Driver)

	// Initialize report publisher
	publisher, err := nats.NewNATSPublisher(ctx, cfg.NATS, log)
	if err != nil {
		log.Error("failed to create NATS publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	// Initialize services
	unitOfWork := postgres.NewUnitOfWork(db)
	reconcileService := reconcile.NewReconcileService(unitOfWork, storage, publisher, cfg.Reconcile.BatchSize, log)
	triggerHandler := reconcile.NewTriggerHandler(reconcileService, cfg.Reconcile.Threshold, log)

	// Initialize NATS consumer
	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, log)
	if err != nil {
		log.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	log.Info("NATS consumer initialized")

	if err := natsConsumer.Subscribe(ctx, triggerHandler); err != nil {
		log.Error("failed to subscribe to NATS", "error", err)
		_ = natsConsumer.Close()
		os.Exit(1)
	}
	log.Info("NATS subscription active", "subject", cfg.NATS.TriggerSubject)

	// Wait for termination signal
	<-ctx.Done()
	log.Info("gracefully shutting down reconciler")

	if err := natsConsumer.Close(); err != nil {
		log.Error("failed to close NATS consumer during shutdown", "error", err)
	}

	log.Info("reconciler shutdown complete")
}
