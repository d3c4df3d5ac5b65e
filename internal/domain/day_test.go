package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDay_DateString(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{
			name:     "date 2024-12-12",
			date:     time.Date(2024, 12, 12, 10, 0, 0, 0, time.UTC),
			expected: "20241212",
		},
		{
			name:     "date 2024-01-01",
			date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "20240101",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := Day{Date: tt.date}
			assert.Equal(t, tt.expected, day.DateString())
		})
	}
}

func TestDay_DisplayString(t *testing.T) {
	now := time.Date(2024, 6, 20, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{
			name:     "today",
			date:     time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
			expected: "Сегодня",
		},
		{
			name:     "yesterday",
			date:     time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC),
			expected: "Вчера",
		},
		{
			name:     "two days ago",
			date:     time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
			expected: "18 июн 2024",
		},
		{
			name:     "previous year",
			date:     time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			expected: "31 дек 2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := Day{Date: tt.date}
			assert.Equal(t, tt.expected, day.DisplayString(now))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	tbilisi := time.FixedZone("GET", 4*60*60)

	tests := []struct {
		name     string
		a, b     time.Time
		expected int
	}{
		{
			name:     "same day different hours",
			a:        time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 1, 23, 55, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "late evening to early morning",
			a:        time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "across leap day",
			a:        time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			expected: 2,
		},
		{
			name:     "backwards",
			a:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
			expected: -2,
		},
		{
			name:     "wall clock of the given location is used",
			a:        time.Date(2024, 3, 1, 23, 30, 0, 0, tbilisi),
			b:        time.Date(2024, 3, 2, 0, 30, 0, 0, tbilisi),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.a, tt.b))
		})
	}
}
