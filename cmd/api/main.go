package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"tender-docs/internal/adapters/handlers/http/chi"
	"tender-docs/internal/adapters/handlers/http/chi/v1/admin"
	document2 "tender-docs/internal/adapters/handlers/http/chi/v1/document"
	"tender-docs/internal/adapters/repository/postgres"
	"tender-docs/internal/adapters/scheduler"
	"tender-docs/internal/adapters/storage/driver"
	"tender-docs/internal/config"
	"tender-docs/internal/core/service/document"
	"tender-docs/internal/core/service/reconcile"
	"tender-docs/internal/logger"
	"time"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

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

	//storage
	storage, err := driver.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to init object storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)

	policy := cfg.Upload.Policy()
	documentService := document.NewDocumentService(unitOfWork, storage, policy, log)
	reconcileService := reconcile.NewReconcileService(unitOfWork, storage, nil, cfg.Reconcile.BatchSize, log)

	//http
	documentHandler := document2.NewDocumentHandlerV1(documentService, log.With("component", "http"))
	adminHandler := admin.NewAdminHandlerV1(reconcileService, cfg.Reconcile.Threshold, log.With("component", "http"))

	router := chi.NewRouter(log, documentHandler, adminHandler, cfg.Env.Env, maxBodyBytes(policy.MaxTotalBatchSizeBytes, policy.MaxFileSizeBytes))
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			log.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// scheduled reconciliation
	var sched *scheduler.Scheduler
	if cfg.Reconcile.Schedule != "" {
		sched = scheduler.NewScheduler(log)
		job := scheduler.NewReconcileJob(reconcileService, cfg.Reconcile.Threshold, time.Hour, log.With("component", "reconcile_job"))
		if err := sched.Register(cfg.Reconcile.Schedule, job); err != nil {
			log.Error("failed to schedule reconciliation", "error", err)
			os.Exit(1)
		}
		sched.Start()
	}

	//wait for context cancel
	<-ctx.Done()
	log.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", "error", err)
	} else {
		log.Info("server gracefully shutdown complete")
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	wg.Wait()
	log.Info("app shutdown complete")

}

// maxBodyBytes is the largest payload one upload request may carry
func maxBodyBytes(batchLimit, fileLimit int64) int64 {
	if batchLimit > 0 {
		return batchLimit
	}
	return fileLimit
}
