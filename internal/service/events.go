package service

import (
	"context"
	"time"

	"lexicon/internal/domain"
)

// StatisticsRecorder receives entry and example lifecycle events.
// Persistence services call it inside the transaction of the mutation,
// so a failed statistics update rolls the mutation back.
// LockUser is taken before that transaction begins.
type StatisticsRecorder interface {
	LockUser(ctx context.Context, userID int64) (context.Context, func())
	EnsureStatistics(ctx context.Context, userID int64) error
	OnEntryCreated(ctx context.Context, userID int64, date time.Time) error
	OnEntryDeleted(ctx context.Context, userID int64) error
	OnExampleCreated(ctx context.Context, example *domain.Example) error
	OnExampleDeleted(ctx context.Context, example *domain.Example) error
}

var _ StatisticsRecorder = (*StatisticsService)(nil)
