package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single run of a scheduled job
const jobTimeout = time.Minute

// WeeklyResetter zeroes weekly statistics counters
type WeeklyResetter interface {
	ResetWeeklyCounters(ctx context.Context) error
}

// Scheduler runs periodic statistics jobs on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a scheduler evaluating schedules in location
func New(location *time.Location, logger *zap.Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	cronLogger := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// AddWeeklyReset schedules resetter with a standard five-field cron spec
func (s *Scheduler) AddWeeklyReset(spec string, resetter WeeklyResetter) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		s.runWeeklyReset(resetter)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	s.logger.Info("Weekly reset scheduled",
		zap.String("schedule", spec),
		zap.Time("next_run", s.cron.Entry(id).Schedule.Next(time.Now())),
	)
	return id, nil
}

func (s *Scheduler) runWeeklyReset(resetter WeeklyResetter) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.logger.Info("Running scheduled weekly reset")
	if err := resetter.ResetWeeklyCounters(ctx); err != nil {
		s.logger.Error("Scheduled weekly reset failed", zap.Error(err))
	}
}

// Next returns the next activation of the entry after t
func (s *Scheduler) Next(id cron.EntryID, t time.Time) time.Time {
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return time.Time{}
	}
	return entry.Schedule.Next(t)
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx, whichever is first
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with jobs still running")
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
