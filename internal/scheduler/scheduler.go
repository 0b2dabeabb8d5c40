// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
)

const sweepTimeout = time.Minute

// Sweeper deletes expired verification tokens
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
}

// New creates a scheduler running sweeper on spec, a cron expression or
// descriptor like "@every 10m". An empty spec disables the job.
func New(ctx context.Context, sweeper Sweeper, spec string) *Scheduler {
	return &Scheduler{
		ctx:     ctx,
		cron:    cron.New(cron.WithLocation(time.UTC)),
		sweeper: sweeper,
		spec:    spec,
	}
}

func (s *Scheduler) Start() error {
	if s.spec == "" {
		logger.Info("Token sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Scheduler started", logger.F("token_sweep", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
	defer cancel()

	if ctx.Err() != nil {
		return
	}

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		logger.Error("Failed to sweep verification tokens", logger.F("error", err))
		return
	}
	if n > 0 {
		logger.Info("Swept expired verification tokens", logger.F("count", n))
	}
}
