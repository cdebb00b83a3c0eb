package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/config"
)

const defaultRetentionInterval = 24 * time.Hour

// Scheduler is responsible for running background jobs
type Scheduler struct {
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	retentionJob      *RetentionJob
	retentionInterval time.Duration
	retentionTicker   *time.Ticker
	done              sync.WaitGroup
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRetentionInterval overrides how often the retention job runs.
func WithRetentionInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.retentionInterval = d
	}
}

// NewScheduler creates the scheduler. It is disabled unless cfg enables retention.
func NewScheduler(cfg *config.Config, store *analytics.Store, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		logger:            logger,
		ctx:               ctx,
		cancel:            cancel,
		enabled:           cfg.RetentionEnabled(),
		retentionJob:      NewRetentionJob(store, logger, cfg.RetentionDays),
		retentionInterval: defaultRetentionInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(jobName string, jobFunc func(context.Context) error) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", jobName))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", jobName),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := jobFunc(s.ctx); err != nil {
		s.logger.Error("Error executing job", slog.String("job", jobName), slog.Any("error", err))
	}
}

// Start begins all background jobs.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...")
	s.isRunning = true
	s.startRetentionJob()

	return nil
}

func (s *Scheduler) startRetentionJob() {
	s.logger.Info("Starting retention job", slog.Duration("interval", s.retentionInterval))
	s.retentionTicker = time.NewTicker(s.retentionInterval)

	s.done.Add(1)
	go func() {
		defer s.done.Done()

		s.executeJobSafely("retention", s.retentionJob.Run)

		for {
			select {
			case <-s.retentionTicker.C:
				s.executeJobSafely("retention", s.retentionJob.Run)
			case <-s.ctx.Done():
				s.logger.Info("Retention job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs and waits for a running job to return.
// Implements cartridge.BackgroundWorker interface.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.retentionTicker != nil {
		s.retentionTicker.Stop()
	}

	s.cancel()
	s.done.Wait()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// RunRetention triggers the retention job once, outside the schedule.
func (s *Scheduler) RunRetention(ctx context.Context) error {
	return s.retentionJob.Run(ctx)
}
