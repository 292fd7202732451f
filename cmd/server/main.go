// Package main is the entry point for the salesdesk API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesdesk/internal/domain/catalogs/account"
	"salesdesk/internal/domain/catalogs/contact"
	"salesdesk/internal/domain/customer"
	"salesdesk/internal/domain/documents/order"
	"salesdesk/internal/domain/documents/order_summary"
	"salesdesk/internal/domain/numbering"
	"salesdesk/internal/domain/summary"
	"salesdesk/internal/infrastructure/cache"
	v1 "salesdesk/internal/infrastructure/http/v1"
	"salesdesk/internal/infrastructure/numerator"
	"salesdesk/internal/infrastructure/storage/postgres"
	"salesdesk/internal/infrastructure/storage/postgres/catalog_repo"
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

	ctx := context.Background()
	log.Infow("starting salesdesk server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.URL)
	poolCfg.ApplicationName = cfg.App.Name
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool, cfg.DB.StatementTimeout)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Catalogs ---
	accountRepo := catalog_repo.NewAccountRepo(txManager)
	contactRepo := catalog_repo.NewContactRepo(txManager)
	accountService := account.NewService(accountRepo, txManager)
	contactService := contact.NewService(contactRepo, txManager)

	// --- Numbering ---
	var names numbering.NameResolver = customer.NewResolver(accountRepo, contactRepo)
	if cfg.Numbering.CacheNames {
		nameCache := cache.NewNameCache(pool.Pool, names)
		nameCache.Start(ctx)
		defer nameCache.Stop()
		names = nameCache
	}

	allocator := numbering.NewAllocator(
		numerator.New(txManager),
		names,
		txManager.Savepoints(),
		numbering.Config{
			MaxAttempts: cfg.Numbering.MaxAttempts,
			PadWidth:    cfg.Numbering.PadWidth,
		},
	)

	// --- Documents ---
	orderRepo := document_repo.NewOrderRepo(txManager)
	summaryRepo := document_repo.NewOrderSummaryRepo(txManager)

	orderService := order.NewService(
		orderRepo,
		allocator,
		txManager,
		postgres.NewOutboxPublisher(txManager),
		auditService,
	)
	summaryService := order_summary.NewService(
		summaryRepo,
		summary.NewAggregator(orderRepo, summaryRepo),
		txManager,
		auditService,
		order_summary.Options{RecomputeOnUpdate: cfg.Summary.RecomputeOnUpdate},
	)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:    log,
		DB:        pool,
		Orders:    orderService,
		Summaries: summaryService,
		Accounts:  accountService,
		Contacts:  contactService,
		Debug:     cfg.App.IsDevelopment(),
	}
	if cfg.HTTP.IdempotencyTTL > 0 {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txManager, cfg.HTTP.IdempotencyTTL)
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	pool.LogStats(shutdownCtx)
	log.Info("server stopped")
}
