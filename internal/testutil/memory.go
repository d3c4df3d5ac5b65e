package testutil

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"lexicon/internal/domain"
)

// MemoryStatisticsRepository is an in-memory StatisticsRepository.
// GetForUpdate and Save are separate steps with no row lock in between,
// so concurrent callers lose updates unless they serialize themselves.
type MemoryStatisticsRepository struct {
	mu        sync.Mutex
	rows      map[int64]domain.UserStatistics
	usernames map[int64]string
}

// NewMemoryStatisticsRepository creates an empty repository
func NewMemoryStatisticsRepository() *MemoryStatisticsRepository {
	return &MemoryStatisticsRepository{
		rows:      make(map[int64]domain.UserStatistics),
		usernames: make(map[int64]string),
	}
}

// AddUser registers a display name used for ranking
func (r *MemoryStatisticsRepository) AddUser(userID int64, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usernames[userID] = username
}

// Put stores a record as is
func (r *MemoryStatisticsRepository) Put(stats domain.UserStatistics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[stats.UserID] = stats
}

// Snapshot returns a copy of the user's record and whether it exists
func (r *MemoryStatisticsRepository) Snapshot(userID int64) (domain.UserStatistics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[userID]
	return s, ok
}

func (r *MemoryStatisticsRepository) ensureLocked(userID int64) (domain.UserStatistics, bool) {
	s, ok := r.rows[userID]
	if !ok {
		s = domain.UserStatistics{UserID: userID}
		r.rows[userID] = s
	}
	s.Username = r.usernames[userID]
	return s, !ok
}

func (r *MemoryStatisticsRepository) Ensure(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(userID)
	return nil
}

func (r *MemoryStatisticsRepository) GetForUpdate(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	r.mu.Lock()
	s, _ := r.ensureLocked(userID)
	r.mu.Unlock()

	// Widen the read-modify-write window
	runtime.Gosched()
	return &s, nil
}

func (r *MemoryStatisticsRepository) Save(ctx context.Context, stats *domain.UserStatistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[stats.UserID] = *stats
	return nil
}

func (r *MemoryStatisticsRepository) DecrementEntries(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, created := r.ensureLocked(userID)
	s.RemoveEntry()
	r.rows[userID] = s
	return created, nil
}

func (r *MemoryStatisticsRepository) AdjustExamples(ctx context.Context, userID int64, delta int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, created := r.ensureLocked(userID)
	s.AdjustExamples(delta)
	r.rows[userID] = s
	return created, nil
}

func (r *MemoryStatisticsRepository) ResetWeekly(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.rows {
		s.ResetWeekly()
		r.rows[id] = s
	}
	return int64(len(r.rows)), nil
}

func (r *MemoryStatisticsRepository) Get(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	s.Username = r.usernames[userID]
	return &s, nil
}

func (r *MemoryStatisticsRepository) Top(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]domain.UserStatistics, 0, len(r.rows))
	for id, s := range r.rows {
		s.Username = r.usernames[id]
		all = append(all, s)
	}

	sort.Slice(all, func(i, j int) bool {
		vi, vj := metric.Value(all[i]), metric.Value(all[j])
		if vi != vj {
			return vi > vj
		}
		// bytewise, as COLLATE "C" in the postgres repository
		if all[i].Username != all[j].Username {
			return all[i].Username < all[j].Username
		}
		return all[i].UserID < all[j].UserID
	})

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
