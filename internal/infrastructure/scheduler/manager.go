// Package scheduler runs the billing sweeps on gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

const (
	JobExpirySweep      = "expiry-sweep"
	JobAbandonedCleanup = "abandoned-cleanup"

	sweepTimeout = 10 * time.Minute
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a scheduler whose cron expressions are evaluated
// in the business timezone. When locker is non-nil every job run first takes
// a distributed lock named after the job, so replicas never overlap.
func NewSchedulerManager(log logger.Interface, locker gocron.Locker) (*SchedulerManager, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithLocation(biztime.Location()),
	}
	if locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(locker))
	}

	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBillingJobs registers the expiry sweep and the abandoned checkout
// cleanup on their cron schedules.
func (m *SchedulerManager) RegisterBillingJobs(
	expiryCron string,
	cleanupCron string,
	expireJob BatchJob,
	cleanupJob BatchJob,
) error {
	if err := m.registerCron(JobExpirySweep, expiryCron, expireJob, "subscription", "expire"); err != nil {
		return err
	}
	if err := m.registerCron(JobAbandonedCleanup, cleanupCron, cleanupJob, "subscription", "cleanup"); err != nil {
		return err
	}

	m.logger.Infow("registered billing jobs",
		"expiry_sweep", expiryCron,
		"abandoned_cleanup", cleanupCron,
		"timezone", biztime.Location().String(),
	)
	return nil
}

func (m *SchedulerManager) registerCron(name, cron string, job BatchJob, tags ...string) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()
			m.runBatch(ctx, name, job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags(tags...),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", name, err)
	}
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, name string, job BatchJob) int {
	m.logger.Debugw("batch job started", "job", name)

	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx)
	if err != nil {
		// Shutdown cancels the context; not worth an error line.
		if ctx.Err() != nil {
			m.logger.Warnw("batch job interrupted", "job", name, "error", err)
			return count
		}
		m.logger.Errorw("batch job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return count
	}

	if count > 0 {
		m.logger.Infow("batch job processed records",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("batch job found nothing to process",
			"job", name,
			"duration", time.Since(startTime),
		)
	}
	return count
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
