package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lexicon/internal/domain"
)

// StatisticsRepo implements repository.StatisticsRepository
type StatisticsRepo struct {
	db *sql.DB
}

// NewStatisticsRepo creates a new statistics repository
func NewStatisticsRepo(db *sql.DB) *StatisticsRepo {
	return &StatisticsRepo{db: db}
}

const selectStatistics = `
	SELECT s.user_id, u.username, s.total_entries, s.weekly_entries,
		s.total_examples, s.weekly_examples, s.current_streak, s.max_streak, s.last_entry_date
	FROM user_statistics s
	JOIN users u ON u.user_id = s.user_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatistics(row rowScanner) (*domain.UserStatistics, error) {
	var (
		s        domain.UserStatistics
		lastDate sql.NullTime
	)
	err := row.Scan(
		&s.UserID, &s.Username, &s.TotalEntries, &s.WeeklyEntries,
		&s.TotalExamples, &s.WeeklyExamples, &s.CurrentStreak, &s.MaxStreak, &lastDate,
	)
	if err != nil {
		return nil, err
	}
	if lastDate.Valid {
		day := domain.CalendarDay(lastDate.Time)
		s.LastEntryDate = &day
	}
	return &s, nil
}

// Ensure creates a zeroed statistics row if the user has none
func (r *StatisticsRepo) Ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_statistics (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure statistics: %w", err)
	}
	return nil
}

// GetForUpdate fetches-or-creates the user's row and locks it.
// The lock only outlives the call when ctx carries a transaction.
func (r *StatisticsRepo) GetForUpdate(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	if err := r.Ensure(ctx, userID); err != nil {
		return nil, err
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, selectStatistics+`WHERE s.user_id = $1 FOR UPDATE OF s`, userID)
	stats, err := scanStatistics(row)
	if err != nil {
		return nil, fmt.Errorf("failed to lock statistics: %w", err)
	}
	return stats, nil
}

// Save writes every counter of stats
func (r *StatisticsRepo) Save(ctx context.Context, stats *domain.UserStatistics) error {
	query := `
		UPDATE user_statistics
		SET total_entries = $2, weekly_entries = $3,
			total_examples = $4, weekly_examples = $5,
			current_streak = $6, max_streak = $7, last_entry_date = $8::date
		WHERE user_id = $1
	`
	// Sent as text so the session time zone cannot shift the date
	var lastDate sql.NullString
	if stats.LastEntryDate != nil {
		lastDate = sql.NullString{String: stats.LastEntryDate.Format("2006-01-02"), Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		stats.UserID, stats.TotalEntries, stats.WeeklyEntries,
		stats.TotalExamples, stats.WeeklyExamples,
		stats.CurrentStreak, stats.MaxStreak, lastDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save statistics: %w", err)
	}
	return nil
}

// DecrementEntries lowers both entry counters by one, never below zero.
// xmax = 0 on the returned row means the upsert inserted it.
func (r *StatisticsRepo) DecrementEntries(ctx context.Context, userID int64) (bool, error) {
	query := `
		INSERT INTO user_statistics (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET
			total_entries = GREATEST(user_statistics.total_entries - 1, 0),
			weekly_entries = GREATEST(user_statistics.weekly_entries - 1, 0)
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&inserted); err != nil {
		return false, fmt.Errorf("failed to decrement entries: %w", err)
	}
	return inserted, nil
}

// AdjustExamples adds delta to both example counters, never below zero
func (r *StatisticsRepo) AdjustExamples(ctx context.Context, userID int64, delta int) (bool, error) {
	query := `
		INSERT INTO user_statistics (user_id, total_examples, weekly_examples)
		VALUES ($1, GREATEST($2::int, 0), GREATEST($2::int, 0))
		ON CONFLICT (user_id) DO UPDATE SET
			total_examples = GREATEST(user_statistics.total_examples + $2::int, 0),
			weekly_examples = GREATEST(user_statistics.weekly_examples + $2::int, 0)
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, delta).Scan(&inserted); err != nil {
		return false, fmt.Errorf("failed to adjust examples: %w", err)
	}
	return inserted, nil
}

// ResetWeekly zeroes weekly counters of every user in one statement
func (r *StatisticsRepo) ResetWeekly(ctx context.Context) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE user_statistics SET weekly_entries = 0, weekly_examples = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset weekly statistics: %w", err)
	}
	return res.RowsAffected()
}

// Get returns the user's statistics, or nil if the user has none yet
func (r *StatisticsRepo) Get(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, selectStatistics+`WHERE s.user_id = $1`, userID)
	stats, err := scanStatistics(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Top returns up to limit records ordered by metric, ties broken by username.
// Usernames compare bytewise under the "C" collation whatever the database default is.
func (r *StatisticsRepo) Top(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error) {
	// metric is interpolated into SQL, so it must be one of the known columns
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}

	query := selectStatistics + fmt.Sprintf(`ORDER BY s.%s DESC, u.username COLLATE "C" ASC, s.user_id ASC LIMIT $1`, metric)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UserStatistics{}
	for rows.Next() {
		stats, err := scanStatistics(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *stats)
	}

	return result, rows.Err()
}
