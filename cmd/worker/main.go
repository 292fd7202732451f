// Package main is the entry point for the salesdesk background worker.
// It relays order events from the outbox into summary recomputation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/domain/summary"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/internal/infrastructure/storage/postgres/document_repo"
	"salesdesk/pkg/config"
	"salesdesk/pkg/logger"
)

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting salesdesk worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.ApplicationName = cfg.App.Name + "-worker"
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, cfg.DB.StatementTimeout)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	orderRepo := document_repo.NewOrderRepo(txManager)
	summaryRepo := document_repo.NewOrderSummaryRepo(txManager)
	summaryService := order_summary.NewService(
		summaryRepo,
		summary.NewAggregator(orderRepo, summaryRepo),
		txManager,
		auditService,
		order_summary.Options{RecomputeOnUpdate: cfg.Summary.RecomputeOnUpdate},
	)

	relay := postgres.NewOutboxRelay(txManager, cfg.Worker.BatchSize, SummaryHandler(summaryService, log))
	keys := postgres.NewIdempotencyStore(txManager, cfg.HTTP.IdempotencyTTL)

	worker := NewWorker(relay, keys, WorkerConfig{
		PollInterval:    cfg.Worker.PollInterval,
		CleanupInterval: cfg.Worker.CleanupInterval,
	}, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
