package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexicon/internal/domain"
	"lexicon/internal/repository"
)

const (
	// daysPageSize is the number of days on one page of the days list
	daysPageSize = 7
	// searchLimit caps the number of search results
	searchLimit = 20
)

// EntryService handles dictionary entry business logic
type EntryService struct {
	entryRepo   repository.EntryRepository
	exampleRepo repository.ExampleRepository
	folderRepo  repository.FolderRepository
	stats       StatisticsRecorder
	tx          repository.Transactor
}

// NewEntryService creates a new entry service
func NewEntryService(
	entryRepo repository.EntryRepository,
	exampleRepo repository.ExampleRepository,
	folderRepo repository.FolderRepository,
	stats StatisticsRecorder,
	tx repository.Transactor,
) *EntryService {
	return &EntryService{
		entryRepo:   entryRepo,
		exampleRepo: exampleRepo,
		folderRepo:  folderRepo,
		stats:       stats,
		tx:          tx,
	}
}

// AddEntry saves a word-translation pair into the user's default dictionary
func (s *EntryService) AddEntry(ctx context.Context, userID int64, word, translation string) (*domain.Entry, error) {
	return s.AddEntryTo(ctx, userID, 0, word, translation)
}

// AddEntryTo saves a word-translation pair into a dictionary of the user.
// dictionaryID 0 means the default dictionary.
func (s *EntryService) AddEntryTo(ctx context.Context, userID, dictionaryID int64, word, translation string) (*domain.Entry, error) {
	word = strings.TrimSpace(word)
	translation = strings.TrimSpace(translation)
	if word == "" || translation == "" {
		return nil, domain.ErrEmptyInput
	}

	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	var entry *domain.Entry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		target, err := s.targetDictionary(ctx, userID, dictionaryID)
		if err != nil {
			return err
		}

		entry, err = s.entryRepo.CreateEntry(ctx, target, word, translation)
		if err != nil {
			return err
		}
		entry.OwnerID = userID

		return s.stats.OnEntryCreated(ctx, userID, time.Time{})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) targetDictionary(ctx context.Context, userID, dictionaryID int64) (int64, error) {
	if dictionaryID == 0 {
		return s.entryRepo.EnsureDefaultDictionary(ctx, userID)
	}

	dict, err := s.folderRepo.GetDictionary(ctx, dictionaryID)
	if err != nil {
		return 0, err
	}
	if dict.OwnerID != userID {
		return 0, domain.ErrWrongOwner
	}
	return dict.ID, nil
}

// DeleteEntry removes an entry of the user together with its examples
func (s *EntryService) DeleteEntry(ctx context.Context, userID, entryID int64) error {
	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.entryRepo.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.OwnerID != userID {
			return domain.ErrWrongOwner
		}

		// Provenance must be read before the rows cascade away
		examples, err := s.exampleRepo.ListByEntry(ctx, entryID)
		if err != nil {
			return fmt.Errorf("failed to list examples: %w", err)
		}

		if err := s.entryRepo.DeleteEntry(ctx, entryID); err != nil {
			return err
		}

		for i := range examples {
			if err := s.stats.OnExampleDeleted(ctx, &examples[i]); err != nil {
				return err
			}
		}
		return s.stats.OnEntryDeleted(ctx, userID)
	})
}

// GetEntry returns an entry of the user with its examples
func (s *EntryService) GetEntry(ctx context.Context, userID, entryID int64) (*domain.Entry, []domain.Example, error) {
	entry, err := s.entryRepo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if entry.OwnerID != userID {
		return nil, nil, domain.ErrWrongOwner
	}

	examples, err := s.exampleRepo.ListByEntry(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	return entry, examples, nil
}

// GetRandomEntry returns a random entry of the user, or nil if there are none
func (s *EntryService) GetRandomEntry(ctx context.Context, userID int64) (*domain.Entry, error) {
	return s.entryRepo.GetRandomEntry(ctx, userID)
}

// GetDaysList returns paginated list of days with entry counts
func (s *EntryService) GetDaysList(ctx context.Context, userID int64, page int) ([]domain.Day, int, error) {
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * daysPageSize
	days, err := s.entryRepo.GetDaysWithEntries(ctx, userID, daysPageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	totalDays, err := s.entryRepo.GetTotalDaysCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	totalPages := (totalDays + daysPageSize - 1) / daysPageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return days, totalPages, nil
}

// GetEntriesByDate returns all entries for a date in YYYYMMDD format
func (s *EntryService) GetEntriesByDate(ctx context.Context, userID int64, dateStr string) ([]domain.Entry, error) {
	date, err := time.Parse("20060102", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	return s.entryRepo.GetEntriesByDate(ctx, userID, date)
}

// SearchEntries finds the user's entries mentioning query in the word,
// the translation or an example sentence
func (s *EntryService) SearchEntries(ctx context.Context, userID int64, query string) ([]domain.Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	return s.entryRepo.SearchEntries(ctx, userID, query, searchLimit)
}

// GetDictionaryEntries returns a dictionary of the user with its entries
func (s *EntryService) GetDictionaryEntries(ctx context.Context, userID, dictionaryID int64) (*domain.Dictionary, []domain.Entry, error) {
	dict, err := s.folderRepo.GetDictionary(ctx, dictionaryID)
	if err != nil {
		return nil, nil, err
	}
	if dict.OwnerID != userID {
		return nil, nil, domain.ErrWrongOwner
	}

	entries, err := s.entryRepo.ListByDictionary(ctx, dictionaryID)
	if err != nil {
		return nil, nil, err
	}
	return dict, entries, nil
}
