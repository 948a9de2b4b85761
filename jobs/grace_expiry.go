package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/equiseed/equiseed/internal/jobs"
)

// InvestorSettler settles commitments whose grace period lapsed.
type InvestorSettler interface {
	ConfirmExpiredInvestors(ctx context.Context) (int64, error)
}

// GraceExpiryJob confirms investor commitments once their withdrawal window
// has passed.
type GraceExpiryJob struct {
	Investors InvestorSettler
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewGraceExpiryJob initialises the grace expiry handler.
func NewGraceExpiryJob(investors InvestorSettler, logger *slog.Logger, metrics *jobmetrics.Metrics) *GraceExpiryJob {
	return &GraceExpiryJob{Investors: investors, Logger: logger, Metrics: metrics}
}

// Handle executes the settlement sweep.
func (j *GraceExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Investors == nil {
		return errors.New("grace expiry: handler not configured")
	}

	start := time.Now()
	tracker := j.metrics().Track(TaskGraceExpiry)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	confirmed, err := j.Investors.ConfirmExpiredInvestors(ctx)
	if err != nil {
		resultErr = err
		logger.Error("confirm expired investors", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed grace expiry sweep",
		slog.Int64("confirmed", confirmed),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *GraceExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGraceExpiry))
	}
	return slog.Default().With(slog.String("job", TaskGraceExpiry))
}

func (j *GraceExpiryJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
