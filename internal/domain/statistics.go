package domain

import (
	"fmt"
	"time"
)

// UserStatistics is the per-user aggregate of entry and example activity.
// Counters never go below zero and MaxStreak is never below CurrentStreak.
type UserStatistics struct {
	UserID         int64      `json:"user_id"`
	Username       string     `json:"username"`
	TotalEntries   int        `json:"total_entries"`
	WeeklyEntries  int        `json:"weekly_entries"`
	TotalExamples  int        `json:"total_examples"`
	WeeklyExamples int        `json:"weekly_examples"`
	CurrentStreak  int        `json:"current_streak"`
	MaxStreak      int        `json:"max_streak"`
	LastEntryDate  *time.Time `json:"last_entry_date,omitempty"`
}

// StreakChange describes what a new entry did to the streak
type StreakChange int

const (
	StreakStarted StreakChange = iota
	StreakExtended
	StreakBroken
	StreakUnchanged
	StreakOutOfOrder
)

func (c StreakChange) String() string {
	switch c {
	case StreakStarted:
		return "started"
	case StreakExtended:
		return "extended"
	case StreakBroken:
		return "broken"
	case StreakUnchanged:
		return "unchanged"
	case StreakOutOfOrder:
		return "out_of_order"
	}
	return fmt.Sprintf("StreakChange(%d)", int(c))
}

// RecordEntry applies an entry created on date.
// The streak is evaluated against LastEntryDate before it is overwritten.
// A date earlier than LastEntryDate leaves both the streak and
// LastEntryDate untouched, only the counters move.
func (s *UserStatistics) RecordEntry(date time.Time) StreakChange {
	day := CalendarDay(date)

	var change StreakChange
	if s.LastEntryDate == nil {
		s.CurrentStreak = 1
		change = StreakStarted
	} else {
		switch diff := DaysBetween(*s.LastEntryDate, day); {
		case diff == 1:
			s.CurrentStreak++
			change = StreakExtended
		case diff > 1:
			s.CurrentStreak = 1
			change = StreakBroken
		case diff == 0:
			change = StreakUnchanged
		default:
			change = StreakOutOfOrder
		}
	}

	s.TotalEntries++
	s.WeeklyEntries++
	if change != StreakOutOfOrder {
		s.LastEntryDate = &day
	}
	s.MaxStreak = max(s.MaxStreak, s.CurrentStreak)

	return change
}

// RemoveEntry undoes the counters of one entry. Streak fields stay as they are.
func (s *UserStatistics) RemoveEntry() {
	s.TotalEntries = max(s.TotalEntries-1, 0)
	s.WeeklyEntries = max(s.WeeklyEntries-1, 0)
}

// AdjustExamples adds delta to both example counters, clamping at zero
func (s *UserStatistics) AdjustExamples(delta int) {
	s.TotalExamples = max(s.TotalExamples+delta, 0)
	s.WeeklyExamples = max(s.WeeklyExamples+delta, 0)
}

// ResetWeekly zeroes the weekly counters
func (s *UserStatistics) ResetWeekly() {
	s.WeeklyEntries = 0
	s.WeeklyExamples = 0
}

// Metric is a leaderboard ranking column
type Metric string

const (
	MetricTotalEntries   Metric = "total_entries"
	MetricTotalExamples  Metric = "total_examples"
	MetricWeeklyEntries  Metric = "weekly_entries"
	MetricWeeklyExamples Metric = "weekly_examples"
	MetricMaxStreak      Metric = "max_streak"
)

// Metrics lists every rankable metric in leaderboard order
var Metrics = []Metric{
	MetricTotalEntries,
	MetricTotalExamples,
	MetricWeeklyEntries,
	MetricWeeklyExamples,
	MetricMaxStreak,
}

// ParseMetric validates a metric name
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, name)
	}
	return m, nil
}

// Valid reports whether m is a known metric
func (m Metric) Valid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// Value extracts the metric from a statistics record
func (m Metric) Value(s UserStatistics) int {
	switch m {
	case MetricTotalEntries:
		return s.TotalEntries
	case MetricTotalExamples:
		return s.TotalExamples
	case MetricWeeklyEntries:
		return s.WeeklyEntries
	case MetricWeeklyExamples:
		return s.WeeklyExamples
	case MetricMaxStreak:
		return s.MaxStreak
	}
	return 0
}

// Leaderboard groups the top users of every metric
type Leaderboard struct {
	MostEntries    []UserStatistics `json:"most_entries"`
	MostExamples   []UserStatistics `json:"most_examples"`
	WeeklyEntries  []UserStatistics `json:"weekly_entries"`
	WeeklyExamples []UserStatistics `json:"weekly_examples"`
	TopStreaks     []UserStatistics `json:"top_streaks"`
}

// Set stores the ranking of metric m
func (l *Leaderboard) Set(m Metric, ranking []UserStatistics) {
	switch m {
	case MetricTotalEntries:
		l.MostEntries = ranking
	case MetricTotalExamples:
		l.MostExamples = ranking
	case MetricWeeklyEntries:
		l.WeeklyEntries = ranking
	case MetricWeeklyExamples:
		l.WeeklyExamples = ranking
	case MetricMaxStreak:
		l.TopStreaks = ranking
	}
}

// Get returns the ranking of metric m
func (l *Leaderboard) Get(m Metric) []UserStatistics {
	switch m {
	case MetricTotalEntries:
		return l.MostEntries
	case MetricTotalExamples:
		return l.MostExamples
	case MetricWeeklyEntries:
		return l.WeeklyEntries
	case MetricWeeklyExamples:
		return l.WeeklyExamples
	case MetricMaxStreak:
		return l.TopStreaks
	}
	return nil
}
