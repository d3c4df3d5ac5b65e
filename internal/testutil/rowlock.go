package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"lexicon/internal/domain"
)

type rowLockTxKey struct{}

type rowLockTx struct {
	held map[int64]chan struct{}
}

// RowLockTransactor is a Transactor whose transactions keep every
// statistics row they lock until the outermost WithinTx returns, like
// database row locks that outlive the statement taking them.
// Waiting for a row gives up when ctx is done.
type RowLockTransactor struct {
	mu    sync.Mutex
	rows  map[int64]chan struct{}
	calls atomic.Int64
}

// NewRowLockTransactor creates a transactor with no rows locked
func NewRowLockTransactor() *RowLockTransactor {
	return &RowLockTransactor{rows: make(map[int64]chan struct{})}
}

func (t *RowLockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(rowLockTxKey{}).(*rowLockTx); ok {
		return fn(ctx)
	}

	t.calls.Add(1)
	tx := &rowLockTx{held: make(map[int64]chan struct{})}
	defer func() {
		for _, row := range tx.held {
			<-row
		}
	}()
	return fn(context.WithValue(ctx, rowLockTxKey{}, tx))
}

// Calls returns how many outermost transactions were started
func (t *RowLockTransactor) Calls() int {
	return int(t.calls.Load())
}

// LockRow blocks until the transaction in ctx holds the user's row
func (t *RowLockTransactor) LockRow(ctx context.Context, userID int64) error {
	tx, ok := ctx.Value(rowLockTxKey{}).(*rowLockTx)
	if !ok {
		return errors.New("row lock outside a transaction")
	}
	if _, held := tx.held[userID]; held {
		return nil
	}

	t.mu.Lock()
	row, ok := t.rows[userID]
	if !ok {
		row = make(chan struct{}, 1)
		t.rows[userID] = row
	}
	t.mu.Unlock()

	select {
	case row <- struct{}{}:
		tx.held[userID] = row
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for statistics row of user %d: %w", userID, ctx.Err())
	}
}

// RowLockedStatisticsRepository locks the user's row through a
// RowLockTransactor before every per-user write of the memory repository
type RowLockedStatisticsRepository struct {
	*MemoryStatisticsRepository
	locks *RowLockTransactor

	// AfterWrite runs after each counter write while the row is still held
	AfterWrite func(userID int64)
}

// NewRowLockedStatisticsRepository wraps repo with row locks taken from locks
func NewRowLockedStatisticsRepository(repo *MemoryStatisticsRepository, locks *RowLockTransactor) *RowLockedStatisticsRepository {
	return &RowLockedStatisticsRepository{MemoryStatisticsRepository: repo, locks: locks}
}

func (r *RowLockedStatisticsRepository) GetForUpdate(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	if err := r.locks.LockRow(ctx, userID); err != nil {
		return nil, err
	}
	return r.MemoryStatisticsRepository.GetForUpdate(ctx, userID)
}

func (r *RowLockedStatisticsRepository) Save(ctx context.Context, stats *domain.UserStatistics) error {
	if err := r.locks.LockRow(ctx, stats.UserID); err != nil {
		return err
	}
	return r.MemoryStatisticsRepository.Save(ctx, stats)
}

func (r *RowLockedStatisticsRepository) DecrementEntries(ctx context.Context, userID int64) (bool, error) {
	if err := r.locks.LockRow(ctx, userID); err != nil {
		return false, err
	}
	created, err := r.MemoryStatisticsRepository.DecrementEntries(ctx, userID)
	r.afterWrite(userID)
	return created, err
}

func (r *RowLockedStatisticsRepository) AdjustExamples(ctx context.Context, userID int64, delta int) (bool, error) {
	if err := r.locks.LockRow(ctx, userID); err != nil {
		return false, err
	}
	created, err := r.MemoryStatisticsRepository.AdjustExamples(ctx, userID, delta)
	r.afterWrite(userID)
	return created, err
}

func (r *RowLockedStatisticsRepository) afterWrite(userID int64) {
	if r.AfterWrite != nil {
		r.AfterWrite(userID)
	}
}
