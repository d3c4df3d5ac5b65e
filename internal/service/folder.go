package service

import (
	"context"
	"fmt"
	"strings"

	"lexicon/internal/domain"
	"lexicon/internal/repository"
)

// FolderService manages folders and the dictionaries inside them
type FolderService struct {
	folderRepo  repository.FolderRepository
	entryRepo   repository.EntryRepository
	exampleRepo repository.ExampleRepository
	stats       StatisticsRecorder
	tx          repository.Transactor
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repository.FolderRepository,
	entryRepo repository.EntryRepository,
	exampleRepo repository.ExampleRepository,
	stats StatisticsRecorder,
	tx repository.Transactor,
) *FolderService {
	return &FolderService{
		folderRepo:  folderRepo,
		entryRepo:   entryRepo,
		exampleRepo: exampleRepo,
		stats:       stats,
		tx:          tx,
	}
}

// CreateFolder creates a folder; an empty language means English
func (s *FolderService) CreateFolder(ctx context.Context, userID int64, name, language string) (*domain.Folder, error) {
	name, err := domain.CleanName(name)
	if err != nil {
		return nil, err
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = domain.DefaultFolderLanguage
	}
	return s.folderRepo.CreateFolder(ctx, userID, name, language)
}

// ListFolders returns the user's folders
func (s *FolderService) ListFolders(ctx context.Context, userID int64) ([]domain.Folder, error) {
	return s.folderRepo.ListFolders(ctx, userID)
}

// GetFolder returns a folder of the user with its dictionaries
func (s *FolderService) GetFolder(ctx context.Context, userID, folderID int64) (*domain.Folder, []domain.Dictionary, error) {
	folder, err := s.ownFolder(ctx, userID, folderID)
	if err != nil {
		return nil, nil, err
	}

	dictionaries, err := s.folderRepo.ListDictionaries(ctx, folderID)
	if err != nil {
		return nil, nil, err
	}
	return folder, dictionaries, nil
}

// DeleteFolder removes a folder of the user with all its dictionaries.
// Every cascaded entry and example is taken off the user's statistics.
// It returns the number of entries removed.
func (s *FolderService) DeleteFolder(ctx context.Context, userID, folderID int64) (int, error) {
	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	var removed int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownFolder(ctx, userID, folderID); err != nil {
			return err
		}

		// Read what is about to cascade away
		examples, err := s.exampleRepo.ListByFolder(ctx, folderID)
		if err != nil {
			return fmt.Errorf("failed to list examples: %w", err)
		}
		removed, err = s.entryRepo.CountByFolder(ctx, folderID)
		if err != nil {
			return err
		}

		if err := s.folderRepo.DeleteFolder(ctx, folderID); err != nil {
			return err
		}
		return s.uncount(ctx, userID, examples, removed)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// CreateDictionary creates a dictionary in a folder of the user
func (s *FolderService) CreateDictionary(ctx context.Context, userID, folderID int64, name string) (*domain.Dictionary, error) {
	name, err := domain.CleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownFolder(ctx, userID, folderID); err != nil {
		return nil, err
	}

	dict, err := s.folderRepo.CreateDictionary(ctx, folderID, name)
	if err != nil {
		return nil, err
	}
	dict.OwnerID = userID
	return dict, nil
}

// DeleteDictionary removes a dictionary of the user with its entries.
// It returns the number of entries removed.
func (s *FolderService) DeleteDictionary(ctx context.Context, userID, dictionaryID int64) (int, error) {
	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	var removed int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		dict, err := s.folderRepo.GetDictionary(ctx, dictionaryID)
		if err != nil {
			return err
		}
		if dict.OwnerID != userID {
			return domain.ErrWrongOwner
		}

		examples, err := s.exampleRepo.ListByDictionary(ctx, dictionaryID)
		if err != nil {
			return fmt.Errorf("failed to list examples: %w", err)
		}
		removed, err = s.entryRepo.CountByDictionary(ctx, dictionaryID)
		if err != nil {
			return err
		}

		if err := s.folderRepo.DeleteDictionary(ctx, dictionaryID); err != nil {
			return err
		}
		return s.uncount(ctx, userID, examples, removed)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *FolderService) ownFolder(ctx context.Context, userID, folderID int64) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != userID {
		return nil, domain.ErrWrongOwner
	}
	return folder, nil
}

// uncount sends one deletion event per cascaded example and entry
func (s *FolderService) uncount(ctx context.Context, userID int64, examples []domain.Example, entries int) error {
	for i := range examples {
		if err := s.stats.OnExampleDeleted(ctx, &examples[i]); err != nil {
			return err
		}
	}
	for i := 0; i < entries; i++ {
		if err := s.stats.OnEntryDeleted(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
