package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/modaro-pos/modaro/internal/app"
	"github.com/modaro-pos/modaro/internal/barcode"
	"github.com/modaro-pos/modaro/internal/catalog"
	"github.com/modaro-pos/modaro/internal/inventory"
	"github.com/modaro-pos/modaro/internal/observability"
	"github.com/modaro-pos/modaro/internal/platform/cache"
	"github.com/modaro-pos/modaro/internal/platform/db"
	"github.com/modaro-pos/modaro/internal/shared"
	"github.com/modaro-pos/modaro/internal/variant"
	"github.com/modaro-pos/modaro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stock cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	stockCache := cache.NewStockCache(redisClient, cfg.StockCacheTTL)

	inventoryRepo := inventory.NewRepository(dbpool, cfg.BatchSize)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, idempotencyStore, stockCache,
		inventory.ServiceConfig{AllowNegativeStock: cfg.AllowNegativeStock})
	consolidator := inventory.NewConsolidator(inventoryRepo, idempotencyStore, auditLogger, logger, cfg.DefaultStoreID)

	variantRepo := variant.NewRepository(dbpool, cfg.BatchSize)
	variantService := variant.NewService(variantRepo, catalogService, inventoryService, auditLogger)
	variantHandler := variant.NewHandler(logger, variantService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("job client unavailable, async consolidation disabled", slog.Any("error", err))
		jobClient = nil
	} else {
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
	}
	var trigger inventory.ConsolidationTrigger
	if jobClient != nil {
		trigger = jobClient
	}
	inventoryHandler := inventory.NewHandler(logger, inventoryService, consolidator, trigger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	barcodeHandler := barcode.NewHandler(cfg.EAN13Prefix)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		VariantHandler:   variantHandler,
		InventoryHandler: inventoryHandler,
		BarcodeHandler:   barcodeHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
