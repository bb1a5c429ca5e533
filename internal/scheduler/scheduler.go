// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/pipeline"
)

// Runner runs the pipeline once.
type Runner interface {
	RunReport(ctx context.Context) (domain.RunInfo, domain.ReportTable, error)
}

// Scheduler runs a Runner on a standard five-field cron expression.
// A tick that fires while the previous run is still active is skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New parses expr and registers the run job. The schedule does not start
// until Start is called.
func New(expr string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		logger: logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(expr, s.runOnce); err != nil {
		s.cancel()
		return nil, fmt.Errorf("parse report schedule %q: %w", expr, err)
	}
	return s, nil
}

// Start runs the job once right away and then fires the schedule, all in
// the background.
func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", "next_run", s.cron.Entries()[0].Schedule.Next(time.Now()))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runOnce()
	}()
	s.cron.Start()
}

// Stop cancels any active run and waits for it to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	s.cancel()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runOnce() {
	s.logger.Info("scheduled run starting")
	run, table, err := s.runner.RunReport(s.ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Warn("previous run still active, skipping scheduled run")
	case err != nil:
		s.logger.Error("scheduled run failed", "run_id", run.ID, "error", err)
	default:
		s.logger.Info("scheduled run completed", "run_id", run.ID, "rows", len(table.Rows))
	}
}
