package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/pipeline"
)

type countingRunner struct {
	calls atomic.Int64
	err   error
	block chan struct{}
}

func (r *countingRunner) RunReport(ctx context.Context) (domain.RunInfo, domain.ReportTable, error) {
	r.calls.Add(1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return domain.RunInfo{ID: "run"}, domain.ReportTable{}, ctx.Err()
		}
	}
	return domain.RunInfo{ID: "run"}, domain.ReportTable{Rows: [][]string{{"a"}, {"b"}}}, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidExpression(t *testing.T) {
	_, err := New("every tuesday", &countingRunner{}, discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "every tuesday")
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	s, err := New("@yearly", runner, discardLogger())
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	s, err := New("@every 1s", runner, discardLogger())
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopCancelsActiveRun(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	s, err := New("@yearly", runner, discardLogger())
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx), "active run returns once its context is canceled")
}

func TestScheduler_RunOnceHandlesErrors(t *testing.T) {
	for _, err := range []error{nil, errors.New("deliver report: broker down"), pipeline.ErrRunInProgress} {
		runner := &countingRunner{err: err}
		s, newErr := New("@hourly", runner, discardLogger())
		require.NoError(t, newErr)

		assert.NotPanics(t, s.runOnce)
		assert.Equal(t, int64(1), runner.calls.Load())
	}
}
