package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/modaro-pos/modaro/internal/app"
	"github.com/modaro-pos/modaro/internal/inventory"
	jobmetrics "github.com/modaro-pos/modaro/internal/jobs"
	"github.com/modaro-pos/modaro/internal/platform/db"
	"github.com/modaro-pos/modaro/internal/shared"
	"github.com/modaro-pos/modaro/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	inventoryRepo := inventory.NewRepository(pool, cfg.BatchSize)
	consolidator := inventory.NewConsolidator(inventoryRepo, idempotencyStore, auditLogger, logger, cfg.DefaultStoreID)

	metrics := jobmetrics.NewMetrics(nil)
	consolidateJob := jobs.NewConsolidateJob(consolidator, logger, metrics)

	nightlyTask, err := jobs.NewConsolidateTask("scheduler")
	if err != nil {
		logger.Error("build consolidate task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskInventoryConsolidate, Handler: consolidateJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: nightlyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
