package service

import (
	"context"
	"strings"

	"lexicon/internal/domain"
	"lexicon/internal/repository"
)

// ExampleService handles example sentences attached to entries
type ExampleService struct {
	entryRepo   repository.EntryRepository
	exampleRepo repository.ExampleRepository
	stats       StatisticsRecorder
	tx          repository.Transactor
}

// NewExampleService creates a new example service
func NewExampleService(
	entryRepo repository.EntryRepository,
	exampleRepo repository.ExampleRepository,
	stats StatisticsRecorder,
	tx repository.Transactor,
) *ExampleService {
	return &ExampleService{
		entryRepo:   entryRepo,
		exampleRepo: exampleRepo,
		stats:       stats,
		tx:          tx,
	}
}

// AddExample attaches a sentence to an entry owned by the user
func (s *ExampleService) AddExample(ctx context.Context, userID, entryID int64, sentence string, source domain.ExampleSource) (*domain.Example, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return nil, domain.ErrEmptyInput
	}
	if !source.Valid() {
		return nil, domain.ErrInvalidSource
	}

	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	var example *domain.Example
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err := s.entryRepo.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.OwnerID != userID {
			return domain.ErrWrongOwner
		}

		example, err = s.exampleRepo.CreateExample(ctx, entryID, sentence, source)
		if err != nil {
			return err
		}
		example.OwnerID = entry.OwnerID

		return s.stats.OnExampleCreated(ctx, example)
	})
	if err != nil {
		return nil, err
	}
	return example, nil
}

// DeleteExample removes an example owned by the user
func (s *ExampleService) DeleteExample(ctx context.Context, userID, exampleID int64) error {
	ctx, unlock := s.stats.LockUser(ctx, userID)
	defer unlock()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		example, err := s.exampleRepo.GetExample(ctx, exampleID)
		if err != nil {
			return err
		}
		if example.OwnerID != userID {
			return domain.ErrWrongOwner
		}

		if err := s.exampleRepo.DeleteExample(ctx, exampleID); err != nil {
			return err
		}
		return s.stats.OnExampleDeleted(ctx, example)
	})
}

// ListExamples returns the examples of an entry in creation order
func (s *ExampleService) ListExamples(ctx context.Context, entryID int64) ([]domain.Example, error) {
	return s.exampleRepo.ListByEntry(ctx, entryID)
}
