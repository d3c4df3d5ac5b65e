package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"lexicon/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(ctx context.Context, userID int64, username string) error {
	args := m.Called(userID, username)
	return args.Error(0)
}

// MockEntryRepository is a mock for EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) EnsureDefaultDictionary(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntryRepository) CreateEntry(ctx context.Context, dictionaryID int64, word, translation string) (*domain.Entry, error) {
	args := m.Called(dictionaryID, word, translation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) GetEntry(ctx context.Context, entryID int64) (*domain.Entry, error) {
	args := m.Called(entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	args := m.Called(entryID)
	return args.Error(0)
}

func (m *MockEntryRepository) GetRandomEntry(ctx context.Context, userID int64) (*domain.Entry, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) GetDaysWithEntries(ctx context.Context, userID int64, limit, offset int) ([]domain.Day, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Day), args.Error(1)
}

func (m *MockEntryRepository) GetTotalDaysCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) GetEntriesByDate(ctx context.Context, userID int64, date time.Time) ([]domain.Entry, error) {
	args := m.Called(userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Entry, error) {
	args := m.Called(dictionaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockEntryRepository) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	args := m.Called(folderID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) CountByDictionary(ctx context.Context, dictionaryID int64) (int, error) {
	args := m.Called(dictionaryID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) SearchEntries(ctx context.Context, userID int64, query string, limit int) ([]domain.Entry, error) {
	args := m.Called(userID, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

// MockFolderRepository is a mock for FolderRepository
type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) CreateFolder(ctx context.Context, userID int64, name, language string) (*domain.Folder, error) {
	args := m.Called(userID, name, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Folder), args.Error(1)
}

func (m *MockFolderRepository) GetFolder(ctx context.Context, folderID int64) (*domain.Folder, error) {
	args := m.Called(folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Folder), args.Error(1)
}

func (m *MockFolderRepository) ListFolders(ctx context.Context, userID int64) ([]domain.Folder, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Folder), args.Error(1)
}

func (m *MockFolderRepository) DeleteFolder(ctx context.Context, folderID int64) error {
	args := m.Called(folderID)
	return args.Error(0)
}

func (m *MockFolderRepository) CreateDictionary(ctx context.Context, folderID int64, name string) (*domain.Dictionary, error) {
	args := m.Called(folderID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dictionary), args.Error(1)
}

func (m *MockFolderRepository) GetDictionary(ctx context.Context, dictionaryID int64) (*domain.Dictionary, error) {
	args := m.Called(dictionaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dictionary), args.Error(1)
}

func (m *MockFolderRepository) ListDictionaries(ctx context.Context, folderID int64) ([]domain.Dictionary, error) {
	args := m.Called(folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Dictionary), args.Error(1)
}

func (m *MockFolderRepository) DeleteDictionary(ctx context.Context, dictionaryID int64) error {
	args := m.Called(dictionaryID)
	return args.Error(0)
}

// MockExampleRepository is a mock for ExampleRepository
type MockExampleRepository struct {
	mock.Mock
}

func (m *MockExampleRepository) CreateExample(ctx context.Context, entryID int64, sentence string, source domain.ExampleSource) (*domain.Example, error) {
	args := m.Called(entryID, sentence, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Example), args.Error(1)
}

func (m *MockExampleRepository) GetExample(ctx context.Context, exampleID int64) (*domain.Example, error) {
	args := m.Called(exampleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Example), args.Error(1)
}

func (m *MockExampleRepository) ListByEntry(ctx context.Context, entryID int64) ([]domain.Example, error) {
	args := m.Called(entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Example), args.Error(1)
}

func (m *MockExampleRepository) ListByFolder(ctx context.Context, folderID int64) ([]domain.Example, error) {
	args := m.Called(folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Example), args.Error(1)
}

func (m *MockExampleRepository) ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Example, error) {
	args := m.Called(dictionaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Example), args.Error(1)
}

func (m *MockExampleRepository) DeleteExample(ctx context.Context, exampleID int64) error {
	args := m.Called(exampleID)
	return args.Error(0)
}

// MockStatisticsRepository is a mock for StatisticsRepository
type MockStatisticsRepository struct {
	mock.Mock
}

func (m *MockStatisticsRepository) Ensure(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStatisticsRepository) GetForUpdate(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) Save(ctx context.Context, stats *domain.UserStatistics) error {
	args := m.Called(stats)
	return args.Error(0)
}

func (m *MockStatisticsRepository) DecrementEntries(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatisticsRepository) AdjustExamples(ctx context.Context, userID int64, delta int) (bool, error) {
	args := m.Called(userID, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatisticsRepository) ResetWeekly(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatisticsRepository) Get(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStatistics), args.Error(1)
}

func (m *MockStatisticsRepository) Top(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error) {
	args := m.Called(metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserStatistics), args.Error(1)
}

// MockStatisticsRecorder is a mock for the statistics event sink
type MockStatisticsRecorder struct {
	mock.Mock
	locks   atomic.Int64
	unlocks atomic.Int64
}

// LockUser is not recorded; it hands back ctx and counts releases
func (m *MockStatisticsRecorder) LockUser(ctx context.Context, userID int64) (context.Context, func()) {
	m.locks.Add(1)
	return ctx, func() { m.unlocks.Add(1) }
}

// Balanced reports whether every LockUser was released
func (m *MockStatisticsRecorder) Balanced() bool {
	return m.locks.Load() == m.unlocks.Load()
}

// Locks returns how many times LockUser was called
func (m *MockStatisticsRecorder) Locks() int {
	return int(m.locks.Load())
}

func (m *MockStatisticsRecorder) EnsureStatistics(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStatisticsRecorder) OnEntryCreated(ctx context.Context, userID int64, date time.Time) error {
	args := m.Called(userID, date)
	return args.Error(0)
}

func (m *MockStatisticsRecorder) OnEntryDeleted(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStatisticsRecorder) OnExampleCreated(ctx context.Context, example *domain.Example) error {
	args := m.Called(example)
	return args.Error(0)
}

func (m *MockStatisticsRecorder) OnExampleDeleted(ctx context.Context, example *domain.Example) error {
	args := m.Called(example)
	return args.Error(0)
}

// FakeTransactor runs fn directly and counts transactions
type FakeTransactor struct {
	calls atomic.Int64
}

func (t *FakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls.Add(1)
	return fn(ctx)
}

// Calls returns how many times WithinTx was entered
func (t *FakeTransactor) Calls() int {
	return int(t.calls.Load())
}

// MockStatisticsReader is a mock for the leaderboard API's statistics source
type MockStatisticsReader struct {
	mock.Mock
}

func (m *MockStatisticsReader) GetLeaderboard(ctx context.Context, limit int) (*domain.Leaderboard, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Leaderboard), args.Error(1)
}

func (m *MockStatisticsReader) GetTopUsers(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error) {
	args := m.Called(metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserStatistics), args.Error(1)
}

func (m *MockStatisticsReader) GetUserStatistics(ctx context.Context, userID int64) (*domain.UserStatistics, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStatistics), args.Error(1)
}

// MockPinger is a mock for a database health check
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
