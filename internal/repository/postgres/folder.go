package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lexicon/internal/domain"
)

// FolderRepo implements repository.FolderRepository
type FolderRepo struct {
	db *sql.DB
}

// NewFolderRepo creates a new folder repository
func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

const selectFolders = `
	SELECT f.id, f.user_id, f.name, f.language, COUNT(d.id)
	FROM folders f
	LEFT JOIN dictionaries d ON d.folder_id = f.id
`

const selectDictionaries = `
	SELECT d.id, d.folder_id, f.user_id, d.name, COUNT(e.id)
	FROM dictionaries d
	JOIN folders f ON f.id = d.folder_id
	LEFT JOIN entries e ON e.dictionary_id = d.id
`

func scanFolder(row rowScanner) (*domain.Folder, error) {
	var f domain.Folder
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.Language, &f.DictionaryCount); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanDictionary(row rowScanner) (*domain.Dictionary, error) {
	var d domain.Dictionary
	if err := row.Scan(&d.ID, &d.FolderID, &d.OwnerID, &d.Name, &d.EntryCount); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateFolder creates an empty folder
func (r *FolderRepo) CreateFolder(ctx context.Context, userID int64, name, language string) (*domain.Folder, error) {
	query := `
		INSERT INTO folders (user_id, name, language)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	f := domain.Folder{UserID: userID, Name: name, Language: language}
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, name, language).Scan(&f.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrFolderExists
		}
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return &f, nil
}

// GetFolder returns a folder with its dictionary count
func (r *FolderRepo) GetFolder(ctx context.Context, folderID int64) (*domain.Folder, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, selectFolders+`WHERE f.id = $1 GROUP BY f.id`, folderID)
	f, err := scanFolder(row)
	if err != nil {
		return nil, notFound(err, domain.ErrFolderNotFound)
	}
	return f, nil
}

// ListFolders returns the user's folders by name
func (r *FolderRepo) ListFolders(ctx context.Context, userID int64) ([]domain.Folder, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectFolders+`WHERE f.user_id = $1 GROUP BY f.id ORDER BY f.name, f.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, *f)
	}
	return folders, rows.Err()
}

// DeleteFolder deletes a folder with everything inside it
func (r *FolderRepo) DeleteFolder(ctx context.Context, folderID int64) error {
	return r.delete(ctx, `DELETE FROM folders WHERE id = $1`, folderID, domain.ErrFolderNotFound)
}

// CreateDictionary creates an empty dictionary in a folder
func (r *FolderRepo) CreateDictionary(ctx context.Context, folderID int64, name string) (*domain.Dictionary, error) {
	query := `
		INSERT INTO dictionaries (folder_id, name)
		VALUES ($1, $2)
		RETURNING id
	`
	d := domain.Dictionary{FolderID: folderID, Name: name}
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, folderID, name).Scan(&d.ID); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDictionaryExists
		}
		return nil, fmt.Errorf("failed to create dictionary: %w", err)
	}
	return &d, nil
}

// GetDictionary returns a dictionary with its owner and entry count
func (r *FolderRepo) GetDictionary(ctx context.Context, dictionaryID int64) (*domain.Dictionary, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, selectDictionaries+`WHERE d.id = $1 GROUP BY d.id, f.user_id`, dictionaryID)
	d, err := scanDictionary(row)
	if err != nil {
		return nil, notFound(err, domain.ErrDictionaryNotFound)
	}
	return d, nil
}

// ListDictionaries returns the dictionaries of a folder by name
func (r *FolderRepo) ListDictionaries(ctx context.Context, folderID int64) ([]domain.Dictionary, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		selectDictionaries+`WHERE d.folder_id = $1 GROUP BY d.id, f.user_id ORDER BY d.name, d.id`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dictionaries []domain.Dictionary
	for rows.Next() {
		d, err := scanDictionary(rows)
		if err != nil {
			return nil, err
		}
		dictionaries = append(dictionaries, *d)
	}
	return dictionaries, rows.Err()
}

// DeleteDictionary deletes a dictionary with its entries
func (r *FolderRepo) DeleteDictionary(ctx context.Context, dictionaryID int64) error {
	return r.delete(ctx, `DELETE FROM dictionaries WHERE id = $1`, dictionaryID, domain.ErrDictionaryNotFound)
}

func (r *FolderRepo) delete(ctx context.Context, query string, id int64, missing error) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
