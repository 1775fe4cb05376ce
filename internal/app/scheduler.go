package app

import (
	"context"
	"fmt"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/lock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a periodic task. Run returns how many records it changed.
type Job struct {
	Name       string
	Spec       string
	RunOnStart bool
	Run        func(ctx context.Context) (int, error)
}

// Scheduler runs jobs on cron schedules. Each run takes a named lock first,
// so only one instance executes a job when several share Redis.
type Scheduler struct {
	jobs     []Job
	location *time.Location
	locker   lock.Locker
	lockTTL  time.Duration
	logger   *zap.Logger
}

func NewScheduler(location *time.Location, locker lock.Locker, logger *zap.Logger, jobs ...Job) (*Scheduler, error) {
	for _, job := range jobs {
		if _, err := cron.ParseStandard(job.Spec); err != nil {
			return nil, fmt.Errorf("job %s: parse schedule %q: %w", job.Name, job.Spec, err)
		}
	}
	if location == nil {
		location = time.Local
	}
	if locker == nil {
		locker = lock.Local{}
	}

	return &Scheduler{
		jobs:     jobs,
		location: location,
		locker:   locker,
		lockTTL:  5 * time.Minute,
		logger:   logger,
	}, nil
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Int("jobs", len(s.jobs)))

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	for _, job := range s.jobs {
		job := job
		if _, err := c.AddFunc(job.Spec, func() { s.runJob(ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}

	for _, job := range s.jobs {
		if job.RunOnStart {
			s.runJob(ctx, job)
		}
	}

	c.Start()
	<-ctx.Done()

	s.logger.Info("Stopping background scheduler")
	<-c.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) String() string {
	return "scheduler"
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	logger := s.logger.With(zap.String("job", job.Name))

	acquired, err := s.locker.Lock(ctx, "job:"+job.Name, s.lockTTL)
	if err != nil {
		logger.Error("Failed to acquire job lock", zap.Error(err))
		return
	}
	if !acquired {
		logger.Debug("Job is running elsewhere, skipping")
		return
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), "job:"+job.Name); err != nil {
			logger.Warn("Failed to release job lock", zap.Error(err))
		}
	}()

	start := time.Now()
	changed, err := job.Run(ctx)
	if err != nil {
		logger.Error("Job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}

	logger.Debug("Job finished", zap.Int("changed", changed), zap.Duration("took", time.Since(start)))
}
