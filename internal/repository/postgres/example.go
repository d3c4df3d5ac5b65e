package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lexicon/internal/domain"
)

// ExampleRepo implements repository.ExampleRepository
type ExampleRepo struct {
	db *sql.DB
}

// NewExampleRepo creates a new example repository
func NewExampleRepo(db *sql.DB) *ExampleRepo {
	return &ExampleRepo{db: db}
}

const selectExamples = `
	SELECT ex.id, ex.entry_id, f.user_id, ex.sentence, ex.source, ex.created_at
	FROM examples ex
	JOIN entries e ON e.id = ex.entry_id
	JOIN dictionaries d ON d.id = e.dictionary_id
	JOIN folders f ON f.id = d.folder_id
`

// CreateExample attaches a sentence to an entry
func (r *ExampleRepo) CreateExample(ctx context.Context, entryID int64, sentence string, source domain.ExampleSource) (*domain.Example, error) {
	query := `
		INSERT INTO examples (entry_id, sentence, source)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	ex := domain.Example{
		EntryID:  entryID,
		Sentence: sentence,
		Source:   source,
	}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, entryID, sentence, string(source)).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create example: %w", err)
	}
	return &ex, nil
}

// GetExample returns an example with its provenance and owner
func (r *ExampleRepo) GetExample(ctx context.Context, exampleID int64) (*domain.Example, error) {
	var ex domain.Example
	err := conn(ctx, r.db).QueryRowContext(ctx, selectExamples+`WHERE ex.id = $1`, exampleID).Scan(
		&ex.ID, &ex.EntryID, &ex.OwnerID, &ex.Sentence, &ex.Source, &ex.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrExampleNotFound)
	}
	return &ex, nil
}

// ListByEntry returns the examples of an entry, oldest first
func (r *ExampleRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.Example, error) {
	return r.list(ctx, `WHERE ex.entry_id = $1 ORDER BY ex.id`, entryID)
}

// ListByFolder returns every example under a folder
func (r *ExampleRepo) ListByFolder(ctx context.Context, folderID int64) ([]domain.Example, error) {
	return r.list(ctx, `WHERE f.id = $1 ORDER BY ex.id`, folderID)
}

// ListByDictionary returns every example under a dictionary
func (r *ExampleRepo) ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Example, error) {
	return r.list(ctx, `WHERE d.id = $1 ORDER BY ex.id`, dictionaryID)
}

func (r *ExampleRepo) list(ctx context.Context, where string, arg int64) ([]domain.Example, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectExamples+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []domain.Example
	for rows.Next() {
		var ex domain.Example
		if err := rows.Scan(&ex.ID, &ex.EntryID, &ex.OwnerID, &ex.Sentence, &ex.Source, &ex.CreatedAt); err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}

	return examples, rows.Err()
}

// DeleteExample removes an example
func (r *ExampleRepo) DeleteExample(ctx context.Context, exampleID int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM examples WHERE id = $1`, exampleID)
	if err != nil {
		return fmt.Errorf("failed to delete example: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrExampleNotFound
	}
	return nil
}
