package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/equiseed/equiseed/internal/jobs"
)

// AuditPruner removes audit log entries older than the retention window.
type AuditPruner interface {
	RemoveOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditCleanupJob prunes aged audit log entries.
type AuditCleanupJob struct {
	Audit     AuditPruner
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Retention time.Duration
}

// NewAuditCleanupJob initialises the cleanup handler.
func NewAuditCleanupJob(audit AuditPruner, logger *slog.Logger, metrics *jobmetrics.Metrics, retention time.Duration) *AuditCleanupJob {
	return &AuditCleanupJob{Audit: audit, Logger: logger, Metrics: metrics, Retention: retention}
}

// Handle executes the retention sweep.
func (j *AuditCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("audit cleanup: handler not configured")
	}
	retention := j.Retention
	if len(t.Payload()) > 0 {
		var payload AuditCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours > 0 {
			retention = time.Duration(payload.RetentionHours) * time.Hour
		}
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	start := time.Now()
	tracker := j.metrics().Track(TaskAuditCleanup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	removed, err := j.Audit.RemoveOlderThan(ctx, retention)
	if err != nil {
		resultErr = err
		j.logger().Error("prune audit logs", slog.Any("error", err))
		return resultErr
	}

	j.logger().Info("completed audit cleanup",
		slog.Int64("removed", removed),
		slog.Duration("retention", retention),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *AuditCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditCleanup))
	}
	return slog.Default().With(slog.String("job", TaskAuditCleanup))
}

func (j *AuditCleanupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
