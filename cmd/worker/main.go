package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/equiseed/equiseed/internal/app"
	"github.com/equiseed/equiseed/internal/funding"
	jobmetrics "github.com/equiseed/equiseed/internal/jobs"
	"github.com/equiseed/equiseed/internal/platform/cache"
	"github.com/equiseed/equiseed/internal/platform/db"
	"github.com/equiseed/equiseed/internal/shared"
	"github.com/equiseed/equiseed/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)

	fundingRepo := funding.NewRepository(pool)
	catalogRepo := funding.NewCatalogRepository(pool, redisClient, cfg.CatalogCacheTTL)
	fundingService := funding.NewService(fundingRepo, catalogRepo, approvalRecorder, auditLogger)

	autocloseJob := jobs.NewRoundAutocloseJob(fundingRepo, fundingService, logger, metrics)
	graceJob := jobs.NewGraceExpiryJob(fundingRepo, logger, metrics)
	auditJob := jobs.NewAuditCleanupJob(auditLogger, logger, metrics, cfg.AuditRetention)

	autocloseTask, err := jobs.NewRoundAutocloseTask(jobs.RoundAutoclosePayload{})
	if err != nil {
		logger.Error("build autoclose task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewAuditCleanupTask(jobs.AuditCleanupPayload{})
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRoundAutoclose, Handler: autocloseJob.Handle},
			{Type: jobs.TaskGraceExpiry, Handler: graceJob.Handle},
			{Type: jobs.TaskAuditCleanup, Handler: auditJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: autocloseTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 * * * *", Task: jobs.NewGraceExpiryTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
