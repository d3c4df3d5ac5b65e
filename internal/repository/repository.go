package repository

import (
	"context"
	"time"

	"lexicon/internal/domain"
)

// Transactor runs fn inside a database transaction carried by ctx.
// Nested calls join the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user data operations
type UserRepository interface {
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
	AuthorizeUser(ctx context.Context, userID int64) error
	EnsureUserExists(ctx context.Context, userID int64, username string) error
}

// EntryRepository defines dictionary entry operations
type EntryRepository interface {
	EnsureDefaultDictionary(ctx context.Context, userID int64) (int64, error)
	CreateEntry(ctx context.Context, dictionaryID int64, word, translation string) (*domain.Entry, error)
	GetEntry(ctx context.Context, entryID int64) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, entryID int64) error
	GetRandomEntry(ctx context.Context, userID int64) (*domain.Entry, error)
	GetDaysWithEntries(ctx context.Context, userID int64, limit, offset int) ([]domain.Day, error)
	GetTotalDaysCount(ctx context.Context, userID int64) (int, error)
	GetEntriesByDate(ctx context.Context, userID int64, date time.Time) ([]domain.Entry, error)
	ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Entry, error)
	CountByFolder(ctx context.Context, folderID int64) (int, error)
	CountByDictionary(ctx context.Context, dictionaryID int64) (int, error)
	// SearchEntries matches query as a substring of word, translation or an example sentence
	SearchEntries(ctx context.Context, userID int64, query string, limit int) ([]domain.Entry, error)
}

// FolderRepository defines folder and dictionary operations.
// Deleting a folder or dictionary cascades to its entries and examples.
type FolderRepository interface {
	CreateFolder(ctx context.Context, userID int64, name, language string) (*domain.Folder, error)
	GetFolder(ctx context.Context, folderID int64) (*domain.Folder, error)
	ListFolders(ctx context.Context, userID int64) ([]domain.Folder, error)
	DeleteFolder(ctx context.Context, folderID int64) error
	CreateDictionary(ctx context.Context, folderID int64, name string) (*domain.Dictionary, error)
	GetDictionary(ctx context.Context, dictionaryID int64) (*domain.Dictionary, error)
	ListDictionaries(ctx context.Context, folderID int64) ([]domain.Dictionary, error)
	DeleteDictionary(ctx context.Context, dictionaryID int64) error
}

// ExampleRepository defines example sentence operations
type ExampleRepository interface {
	CreateExample(ctx context.Context, entryID int64, sentence string, source domain.ExampleSource) (*domain.Example, error)
	GetExample(ctx context.Context, exampleID int64) (*domain.Example, error)
	ListByEntry(ctx context.Context, entryID int64) ([]domain.Example, error)
	ListByFolder(ctx context.Context, folderID int64) ([]domain.Example, error)
	ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Example, error)
	DeleteExample(ctx context.Context, exampleID int64) error
}

// StatisticsRepository defines user statistics storage.
// Mutating methods that may find no row create a zeroed one and report it.
type StatisticsRepository interface {
	Ensure(ctx context.Context, userID int64) error
	// GetForUpdate returns the row locked until the surrounding transaction ends
	GetForUpdate(ctx context.Context, userID int64) (*domain.UserStatistics, error)
	Save(ctx context.Context, stats *domain.UserStatistics) error
	DecrementEntries(ctx context.Context, userID int64) (created bool, err error)
	AdjustExamples(ctx context.Context, userID int64, delta int) (created bool, err error)
	ResetWeekly(ctx context.Context) (int64, error)
	Get(ctx context.Context, userID int64) (*domain.UserStatistics, error)
	Top(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error)
}
