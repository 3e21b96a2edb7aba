// Package scheduler runs periodic prior-cache maintenance.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smartslip/internal/history"
	"github.com/yourusername/smartslip/internal/logger"
)

const jobTimeout = time.Minute

// Scheduler manages scheduled prior-cache jobs
type Scheduler struct {
	cron            *cron.Cron
	cache           history.PriorCache
	logger          *logger.AnalysisLogger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(cache history.PriorCache, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		cache:           cache,
		logger:          logger.NewAnalysisLogger(log),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// SchedulePurge schedules removal of expired priors
func (s *Scheduler) SchedulePurge(cronExpression string) error {
	return s.add(cronExpression, "purge", s.RunPurge)
}

// ScheduleInvalidate schedules a full prior-cache clear, typically once a
// day after results are graded
func (s *Scheduler) ScheduleInvalidate(cronExpression string) error {
	return s.add(cronExpression, "invalidate", s.RunInvalidate)
}

// RunPurge removes expired priors once
func (s *Scheduler) RunPurge(ctx context.Context) {
	start := time.Now()
	removed := s.cache.PurgeExpired(ctx)
	s.logger.LogCacheEvent("prior_cache_purge", logrus.Fields{
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// RunInvalidate clears the prior cache once
func (s *Scheduler) RunInvalidate(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled prior cache clear failed")
		return
	}
	s.logger.LogCacheEvent("prior_cache_clear", logrus.Fields{})
}

func (s *Scheduler) add(cronExpression, name string, job func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"schedule": cronExpression,
	}).Info("Scheduled prior cache job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running
// jobs to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler jobs still running after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
