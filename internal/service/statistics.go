package service

import (
	"context"
	"fmt"
	"time"

	"lexicon/internal/domain"
	"lexicon/internal/repository"
	"lexicon/internal/userlock"

	"go.uber.org/zap"
)

// DefaultLeaderboardLimit is the number of users shown per metric
const DefaultLeaderboardLimit = 5

// StatisticsService keeps per-user statistics consistent with entry and
// example lifecycle events and serves leaderboard reads.
//
// Every per-user mutation runs under an in-process per-user lock and inside
// a transaction (joined if the caller already opened one), so concurrent
// events for the same user cannot lose updates.
//
// The user lock must be taken before the outermost transaction begins and
// released after it ends, otherwise a row lock held by that transaction and
// the user lock can be waited on in opposite orders. Callers that open their
// own transaction take it with LockUser first; events then find it in ctx.
type StatisticsService struct {
	statsRepo repository.StatisticsRepository
	tx        repository.Transactor
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
	locks     *userlock.Locker
}

// NewStatisticsService creates a new statistics service.
// location defines calendar days for streaks; nil means UTC.
func NewStatisticsService(
	statsRepo repository.StatisticsRepository,
	tx repository.Transactor,
	location *time.Location,
	logger *zap.Logger,
) *StatisticsService {
	if location == nil {
		location = time.UTC
	}
	return &StatisticsService{
		statsRepo: statsRepo,
		tx:        tx,
		location:  location,
		logger:    logger,
		now:       time.Now,
		locks:     userlock.New(),
	}
}

// LockUser takes the user's statistics lock unless ctx already holds it.
// Run the transaction with the returned ctx and release after it ends.
func (s *StatisticsService) LockUser(ctx context.Context, userID int64) (context.Context, func()) {
	return s.locks.Acquire(ctx, userID)
}

// Today returns the current calendar day in the statistics location
func (s *StatisticsService) Today() time.Time {
	return domain.CalendarDay(s.now().In(s.location))
}

// EnsureStatistics creates a zeroed record for the user if none exists
func (s *StatisticsService) EnsureStatistics(ctx context.Context, userID int64) error {
	return s.statsRepo.Ensure(ctx, userID)
}

// OnEntryCreated records a new dictionary entry of the user.
// A zero date means today.
func (s *StatisticsService) OnEntryCreated(ctx context.Context, userID int64, date time.Time) error {
	if date.IsZero() {
		date = s.Today()
	} else {
		date = domain.CalendarDay(date.In(s.location))
	}

	ctx, unlock := s.LockUser(ctx, userID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		stats, err := s.statsRepo.GetForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load statistics: %w", err)
		}

		change := stats.RecordEntry(date)
		if change == domain.StreakOutOfOrder {
			s.logger.Warn("Entry date is earlier than last entry date, streak left unchanged",
				zap.Int64("user_id", userID),
				zap.Time("entry_date", date),
				zap.Timep("last_entry_date", stats.LastEntryDate),
			)
		}

		if err := s.statsRepo.Save(ctx, stats); err != nil {
			return err
		}

		s.logger.Debug("Entry recorded in statistics",
			zap.Int64("user_id", userID),
			zap.Stringer("streak", change),
			zap.Int("current_streak", stats.CurrentStreak),
			zap.Int("total_entries", stats.TotalEntries),
		)
		return nil
	})
}

// OnEntryDeleted takes one entry off the user's counters.
// Streak fields are not recomputed.
func (s *StatisticsService) OnEntryDeleted(ctx context.Context, userID int64) error {
	ctx, unlock := s.LockUser(ctx, userID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.statsRepo.DecrementEntries(ctx, userID)
		if err != nil {
			return err
		}
		if created {
			s.logger.Warn("Statistics missing on entry deletion, created zeroed record",
				zap.Int64("user_id", userID),
			)
		}
		return nil
	})
}

// OnExampleCreated counts a new example if the user wrote it
func (s *StatisticsService) OnExampleCreated(ctx context.Context, example *domain.Example) error {
	return s.adjustExamples(ctx, example, 1)
}

// OnExampleDeleted uncounts a deleted example if the user wrote it.
// example must be captured before the row is deleted.
func (s *StatisticsService) OnExampleDeleted(ctx context.Context, example *domain.Example) error {
	return s.adjustExamples(ctx, example, -1)
}

func (s *StatisticsService) adjustExamples(ctx context.Context, example *domain.Example, delta int) error {
	if example == nil || !example.UserAuthored() {
		return nil
	}

	ctx, unlock := s.LockUser(ctx, example.OwnerID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.statsRepo.AdjustExamples(ctx, example.OwnerID, delta)
		if err != nil {
			return err
		}
		if created && delta < 0 {
			s.logger.Warn("Statistics missing on example deletion, created zeroed record",
				zap.Int64("user_id", example.OwnerID),
				zap.Int64("example_id", example.ID),
			)
		}
		return nil
	})
}

// ResetWeeklyCounters zeroes weekly entry and example counters of every user
func (s *StatisticsService) ResetWeeklyCounters(ctx context.Context) error {
	s.logger.Info("Resetting weekly statistics")

	n, err := s.statsRepo.ResetWeekly(ctx)
	if err != nil {
		s.logger.Error("Failed to reset weekly statistics", zap.Error(err))
		return err
	}

	s.logger.Info("Weekly statistics reset", zap.Int64("users", n))
	return nil
}

// GetTopUsers returns up to limit records ranked by metric descending,
// ties broken by username ascending
func (s *StatisticsService) GetTopUsers(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	return s.statsRepo.Top(ctx, metric, limit)
}

// GetLeaderboard ranks users by every metric
func (s *StatisticsService) GetLeaderboard(ctx context.Context, limit int) (*domain.Leaderboard, error) {
	board := &domain.Leaderboard{}
	for _, metric := range domain.Metrics {
		top, err := s.GetTopUsers(ctx, metric, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to rank by %s: %w", metric, err)
		}
		board.Set(metric, top)
	}
	return board, nil
}

// GetUserStatistics returns the user's record, zeroed if there is none yet
func (s *StatisticsService) GetUserStatistics(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	stats, err := s.statsRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &domain.UserStatistics{UserID: userID}, nil
	}
	return stats, nil
}
