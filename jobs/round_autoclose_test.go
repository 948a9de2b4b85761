package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/equiseed/equiseed/internal/funding"
)

type fakeExpiredSource struct {
	rounds []funding.FundingRound
	err    error
}

func (f fakeExpiredSource) ListExpiredActiveRounds(ctx context.Context) ([]funding.FundingRound, error) {
	return f.rounds, f.err
}

type fakeCloser struct {
	closed []int64
	errFor map[int64]error
}

func (f *fakeCloser) Close(ctx context.Context, actorID, roundID int64) (funding.FundingRound, error) {
	if err, ok := f.errFor[roundID]; ok {
		return funding.FundingRound{}, err
	}
	f.closed = append(f.closed, roundID)
	return funding.FundingRound{ID: roundID, ApprovalStatus: funding.StatusClosed}, nil
}

func autocloseTask(t *testing.T, payload RoundAutoclosePayload) *asynq.Task {
	t.Helper()
	task, err := NewRoundAutocloseTask(payload)
	require.NoError(t, err)
	return task
}

func TestRoundAutocloseClosesExpiredRounds(t *testing.T) {
	source := fakeExpiredSource{rounds: []funding.FundingRound{{ID: 1}, {ID: 2}}}
	closer := &fakeCloser{}
	job := NewRoundAutocloseJob(source, closer, nil, nil)

	require.NoError(t, job.Handle(context.Background(), autocloseTask(t, RoundAutoclosePayload{})))
	require.Equal(t, []int64{1, 2}, closer.closed)
}

func TestRoundAutocloseSkipsAlreadyClosed(t *testing.T) {
	source := fakeExpiredSource{rounds: []funding.FundingRound{{ID: 1}, {ID: 2}}}
	closer := &fakeCloser{errFor: map[int64]error{1: funding.ErrInvalidTransition}}
	job := NewRoundAutocloseJob(source, closer, nil, nil)

	require.NoError(t, job.Handle(context.Background(), autocloseTask(t, RoundAutoclosePayload{})))
	require.Equal(t, []int64{2}, closer.closed)
}

func TestRoundAutocloseHonorsLimit(t *testing.T) {
	source := fakeExpiredSource{rounds: []funding.FundingRound{{ID: 1}, {ID: 2}, {ID: 3}}}
	closer := &fakeCloser{}
	job := NewRoundAutocloseJob(source, closer, nil, nil)

	require.NoError(t, job.Handle(context.Background(), autocloseTask(t, RoundAutoclosePayload{Limit: 2})))
	require.Len(t, closer.closed, 2)
}

func TestRoundAutocloseReportsDurationFromInjectedClock(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	job := NewRoundAutocloseJob(fakeExpiredSource{}, &fakeCloser{}, logger, nil)
	job.clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Handle(context.Background(), autocloseTask(t, RoundAutoclosePayload{})))
	require.Contains(t, buf.String(), "duration=0s")
}

func TestRoundAutocloseUnconfiguredHandler(t *testing.T) {
	var job *RoundAutocloseJob
	require.Error(t, job.Handle(context.Background(), autocloseTask(t, RoundAutoclosePayload{})))
}
