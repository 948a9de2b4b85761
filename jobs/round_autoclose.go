package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/equiseed/equiseed/internal/funding"
	jobmetrics "github.com/equiseed/equiseed/internal/jobs"
)

// ExpiredRoundSource lists active rounds whose window has lapsed.
type ExpiredRoundSource interface {
	ListExpiredActiveRounds(ctx context.Context) ([]funding.FundingRound, error)
}

// RoundCloser closes a round on behalf of the system.
type RoundCloser interface {
	Close(ctx context.Context, actorID, roundID int64) (funding.FundingRound, error)
}

// systemActorID marks transitions performed by background jobs rather than an
// admin account.
const systemActorID = int64(0)

// RoundAutocloseJob closes active rounds whose opening date plus duration has
// passed.
type RoundAutocloseJob struct {
	Rounds  ExpiredRoundSource
	Closer  RoundCloser
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewRoundAutocloseJob initialises the autoclose handler.
func NewRoundAutocloseJob(rounds ExpiredRoundSource, closer RoundCloser, logger *slog.Logger, metrics *jobmetrics.Metrics) *RoundAutocloseJob {
	return &RoundAutocloseJob{
		Rounds:  rounds,
		Closer:  closer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the autoclose scan.
func (j *RoundAutocloseJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Rounds == nil || j.Closer == nil {
		return errors.New("round autoclose: handler not configured")
	}
	var payload RoundAutoclosePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	start := j.now()
	tracker := j.metrics().Track(TaskRoundAutoclose)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting round autoclose scan")

	expired, err := j.Rounds.ListExpiredActiveRounds(ctx)
	if err != nil {
		resultErr = err
		logger.Error("list expired rounds", slog.Any("error", err))
		return resultErr
	}

	closed := 0
	for _, round := range expired {
		if payload.Limit > 0 && closed >= payload.Limit {
			break
		}
		if _, err := j.Closer.Close(ctx, systemActorID, round.ID); err != nil {
			// Another admin or run may have closed it first.
			if errors.Is(err, funding.ErrInvalidTransition) {
				continue
			}
			logger.Error("close expired round", slog.Any("error", err), slog.Int64("round_id", round.ID))
			resultErr = err
			continue
		}
		closed++
	}

	j.metrics().AddRoundsClosed(closed)
	logger.Info("completed round autoclose scan",
		slog.Int("expired", len(expired)),
		slog.Int("closed", closed),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return resultErr
}

func (j *RoundAutocloseJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRoundAutoclose))
	}
	return slog.Default().With(slog.String("job", TaskRoundAutoclose))
}

func (j *RoundAutocloseJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RoundAutocloseJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
