package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"lexicon/internal/domain"
	"lexicon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowLockedEngine wires the statistics service to a store whose row locks
// are held until the outermost transaction ends
type rowLockedEngine struct {
	stats *StatisticsService
	repo  *testutil.RowLockedStatisticsRepository
	mem   *testutil.MemoryStatisticsRepository
	tx    *testutil.RowLockTransactor
}

func newRowLockedEngine(initial domain.UserStatistics) rowLockedEngine {
	tx := testutil.NewRowLockTransactor()
	mem := testutil.NewMemoryStatisticsRepository()
	mem.Put(initial)
	repo := testutil.NewRowLockedStatisticsRepository(mem, tx)
	return rowLockedEngine{
		stats: NewStatisticsService(repo, tx, time.UTC, testutil.NewTestLogger()),
		repo:  repo,
		mem:   mem,
		tx:    tx,
	}
}

// startOnFirstWrite runs start once, right after the first counter write of
// the deleting transaction, then gives it time to reach the locks
func startOnFirstWrite(e rowLockedEngine, start func()) {
	var once sync.Once
	e.repo.AfterWrite = func(int64) {
		once.Do(func() {
			go start()
			time.Sleep(50 * time.Millisecond)
		})
	}
}

func waitBoth(t *testing.T, first, second <-chan error) {
	t.Helper()
	for _, done := range []<-chan error{first, second} {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("transactions of one user are waiting on each other")
		}
	}
}

func TestEntryService_DeleteEntryRacingAddEntry(t *testing.T) {
	last := testutil.Date(2024, 3, 1)
	engine := newRowLockedEngine(domain.UserStatistics{
		UserID: 1, TotalEntries: 3, WeeklyEntries: 3, TotalExamples: 2, WeeklyExamples: 2,
		CurrentStreak: 1, MaxStreak: 1, LastEntryDate: &last,
	})

	entries := new(testutil.MockEntryRepository)
	examples := new(testutil.MockExampleRepository)
	svc := NewEntryService(entries, examples, new(testutil.MockFolderRepository), engine.stats, engine.tx)

	entries.On("GetEntry", int64(10)).Return(testutil.NewTestEntry(10, 1, "hello", "привет"), nil)
	examples.On("ListByEntry", int64(10)).Return([]domain.Example{
		*testutil.NewTestExample(1, 10, 1, domain.SourceUser),
		*testutil.NewTestExample(2, 10, 1, domain.SourceUser),
	}, nil)
	entries.On("DeleteEntry", int64(10)).Return(nil)
	entries.On("EnsureDefaultDictionary", int64(1)).Return(int64(7), nil)
	entries.On("CreateEntry", int64(7), "world", "мир").
		Return(&domain.Entry{ID: 11, DictionaryID: 7, Word: "world", Translation: "мир"}, nil)

	// Lock waits give up after the timeout instead of hanging the test
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	added := make(chan error, 1)
	startOnFirstWrite(engine, func() {
		_, err := svc.AddEntry(ctx, 1, "world", "мир")
		added <- err
	})

	deleted := make(chan error, 1)
	go func() { deleted <- svc.DeleteEntry(ctx, 1, 10) }()

	waitBoth(t, deleted, added)

	stats, _ := engine.mem.Snapshot(1)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 0, stats.TotalExamples)
	assert.Equal(t, 0, stats.WeeklyExamples)
	assert.Equal(t, 2, engine.tx.Calls())
	assert.Zero(t, engine.stats.locks.Len(), "no user lock left behind")
}

func TestFolderService_DeleteFolderRacingAddExample(t *testing.T) {
	engine := newRowLockedEngine(domain.UserStatistics{
		UserID: 1, TotalEntries: 4, WeeklyEntries: 4, TotalExamples: 1, WeeklyExamples: 1,
	})

	m := newEntryServiceMocks()
	folders := NewFolderService(m.folders, m.entries, m.examples, engine.stats, engine.tx)
	exampleSvc := NewExampleService(m.entries, m.examples, engine.stats, engine.tx)

	m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 1}, nil)
	m.examples.On("ListByFolder", int64(4)).
		Return([]domain.Example{*testutil.NewTestExample(1, 10, 1, domain.SourceUser)}, nil)
	m.entries.On("CountByFolder", int64(4)).Return(2, nil)
	m.folders.On("DeleteFolder", int64(4)).Return(nil)

	// the new example goes to an entry in another folder
	m.entries.On("GetEntry", int64(20)).Return(testutil.NewTestEntry(20, 1, "world", "мир"), nil)
	m.examples.On("CreateExample", int64(20), "Hello, world.", domain.SourceUser).
		Return(&domain.Example{ID: 5, EntryID: 20, Sentence: "Hello, world.", Source: domain.SourceUser}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	added := make(chan error, 1)
	startOnFirstWrite(engine, func() {
		_, err := exampleSvc.AddExample(ctx, 1, 20, "Hello, world.", domain.SourceUser)
		added <- err
	})

	deleted := make(chan error, 1)
	go func() {
		_, err := folders.DeleteFolder(ctx, 1, 4)
		deleted <- err
	}()

	waitBoth(t, deleted, added)

	stats, _ := engine.mem.Snapshot(1)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.TotalExamples)
	assert.Zero(t, engine.stats.locks.Len())
}

func TestStatisticsService_EventsJoinLockHeldByCaller(t *testing.T) {
	engine := newRowLockedEngine(domain.UserStatistics{UserID: 1})

	ctx, unlock := engine.stats.LockUser(context.Background(), 1)
	err := engine.tx.WithinTx(ctx, func(ctx context.Context) error {
		// would block forever if the events took the user lock again
		if err := engine.stats.OnEntryCreated(ctx, 1, testutil.Date(2024, 3, 1)); err != nil {
			return err
		}
		return engine.stats.OnExampleCreated(ctx, testutil.NewTestExample(1, 10, 1, domain.SourceUser))
	})
	unlock()

	require.NoError(t, err)
	stats, _ := engine.mem.Snapshot(1)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, 1, stats.TotalExamples)
	assert.Zero(t, engine.stats.locks.Len())
}
