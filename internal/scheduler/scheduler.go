package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	log     *slog.Logger
}

// New returns a scheduler using standard five-field cron specs in UTC.
// Each run gets its own context, cancelled after timeout.
func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		timeout: timeout,
		log:     slog.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop prevents new runs and waits for running jobs, or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}

	s.log.Info("scheduler stopped")
}

// AddJob registers job under schedule, e.g. "0 2 1 * *" or "@every 1h".
// Overlapping runs of the same job are skipped.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.run(job)
	}))

	if _, err := s.cron.AddJob(schedule, wrapped); err != nil {
		return fmt.Errorf("scheduling %s: %w", job.Name(), err)
	}

	s.log.Info("job registered", "job", job.Name(), "schedule", schedule)

	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()

	err := job.Run(ctx)
	if err != nil {
		s.log.Error("job failed", "job", job.Name(), "duration", time.Since(start), "error", err)
		return err
	}

	s.log.Info("job completed", "job", job.Name(), "duration", time.Since(start))

	return nil
}
