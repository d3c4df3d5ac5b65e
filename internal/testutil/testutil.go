package testutil

import (
	"lexicon/internal/domain"
	"time"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestEntry creates a test entry
func NewTestEntry(id, ownerID int64, word, translation string) *domain.Entry {
	return &domain.Entry{
		ID:           id,
		DictionaryID: 1,
		OwnerID:      ownerID,
		Word:         word,
		Translation:  translation,
		CreatedAt:    time.Now(),
	}
}

// NewTestExample creates a test example
func NewTestExample(id, entryID, ownerID int64, source domain.ExampleSource) *domain.Example {
	return &domain.Example{
		ID:        id,
		EntryID:   entryID,
		OwnerID:   ownerID,
		Sentence:  "This is an example.",
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// NewTestDay creates a test day
func NewTestDay(date time.Time, entryCount int) domain.Day {
	return domain.Day{
		Date:       date,
		EntryCount: entryCount,
	}
}

// Date returns midnight UTC of the given calendar date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
