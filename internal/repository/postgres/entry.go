package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lexicon/internal/domain"
)

const (
	defaultFolderName     = "Default"
	defaultFolderLanguage = "English"
	defaultDictionaryName = "Main"
)

const selectEntries = `
	SELECT e.id, e.dictionary_id, f.user_id, e.word, e.translation, e.created_at
	FROM entries e
	JOIN dictionaries d ON d.id = e.dictionary_id
	JOIN folders f ON f.id = d.folder_id
`

// likeEscaper makes user input literal inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EntryRepo implements repository.EntryRepository
type EntryRepo struct {
	db       *sql.DB
	timezone string
}

// NewEntryRepo creates a new entry repository.
// Days are grouped by the wall clock of timezone (an IANA name).
func NewEntryRepo(db *sql.DB, timezone string) *EntryRepo {
	return &EntryRepo{db: db, timezone: timezone}
}

// EnsureDefaultDictionary returns the id of the user's default dictionary,
// creating the default folder and dictionary when missing
func (r *EntryRepo) EnsureDefaultDictionary(ctx context.Context, userID int64) (int64, error) {
	query := `
		WITH folder AS (
			INSERT INTO folders (user_id, name, language)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		)
		INSERT INTO dictionaries (folder_id, name)
		SELECT id, $4 FROM folder
		ON CONFLICT (folder_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id int64
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		userID, defaultFolderName, defaultFolderLanguage, defaultDictionaryName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to ensure default dictionary: %w", err)
	}
	return id, nil
}

// CreateEntry saves a word-translation pair into a dictionary
func (r *EntryRepo) CreateEntry(ctx context.Context, dictionaryID int64, word, translation string) (*domain.Entry, error) {
	query := `
		INSERT INTO entries (dictionary_id, word, translation)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	e := domain.Entry{
		DictionaryID: dictionaryID,
		Word:         word,
		Translation:  translation,
	}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, dictionaryID, word, translation).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEntryExists
		}
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	return &e, nil
}

// GetEntry returns an entry together with its owner
func (r *EntryRepo) GetEntry(ctx context.Context, entryID int64) (*domain.Entry, error) {
	query := `
		SELECT e.id, e.dictionary_id, f.user_id, e.word, e.translation, e.created_at
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		JOIN folders f ON f.id = d.folder_id
		WHERE e.id = $1
	`
	var e domain.Entry
	err := conn(ctx, r.db).QueryRowContext(ctx, query, entryID).Scan(
		&e.ID, &e.DictionaryID, &e.OwnerID, &e.Word, &e.Translation, &e.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrEntryNotFound)
	}
	return &e, nil
}

// DeleteEntry deletes an entry; its examples go with it
func (r *EntryRepo) DeleteEntry(ctx context.Context, entryID int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// GetRandomEntry returns a random entry of the user
func (r *EntryRepo) GetRandomEntry(ctx context.Context, userID int64) (*domain.Entry, error) {
	query := `
		SELECT e.id, e.dictionary_id, f.user_id, e.word, e.translation, e.created_at
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		JOIN folders f ON f.id = d.folder_id
		WHERE f.user_id = $1
		ORDER BY RANDOM()
		LIMIT 1
	`
	var e domain.Entry
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&e.ID, &e.DictionaryID, &e.OwnerID, &e.Word, &e.Translation, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetDaysWithEntries returns days that have entries with counts, newest first
func (r *EntryRepo) GetDaysWithEntries(ctx context.Context, userID int64, limit, offset int) ([]domain.Day, error) {
	query := `
		SELECT DATE(e.created_at AT TIME ZONE $2) AS day, COUNT(*) AS count
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		JOIN folders f ON f.id = d.folder_id
		WHERE f.user_id = $1
		GROUP BY day
		ORDER BY day DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID, r.timezone, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.Day
	for rows.Next() {
		var d domain.Day
		if err := rows.Scan(&d.Date, &d.EntryCount); err != nil {
			return nil, err
		}
		days = append(days, d)
	}

	return days, rows.Err()
}

// GetTotalDaysCount returns total number of days with entries
func (r *EntryRepo) GetTotalDaysCount(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT DATE(e.created_at AT TIME ZONE $2))
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		JOIN folders f ON f.id = d.folder_id
		WHERE f.user_id = $1
	`

	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, r.timezone).Scan(&count)
	return count, err
}

// GetEntriesByDate returns all entries created on the given calendar date
func (r *EntryRepo) GetEntriesByDate(ctx context.Context, userID int64, date time.Time) ([]domain.Entry, error) {
	query := `
		SELECT e.id, e.dictionary_id, f.user_id, e.word, e.translation, e.created_at
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		JOIN folders f ON f.id = d.folder_id
		WHERE f.user_id = $1
			AND DATE(e.created_at AT TIME ZONE $2) = $3::date
		ORDER BY e.created_at DESC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID, r.timezone, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.DictionaryID, &e.OwnerID, &e.Word, &e.Translation, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListByDictionary returns the entries of a dictionary in word order
func (r *EntryRepo) ListByDictionary(ctx context.Context, dictionaryID int64) ([]domain.Entry, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectEntries+`WHERE d.id = $1 ORDER BY e.word, e.id`, dictionaryID)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// CountByFolder returns the number of entries in all dictionaries of a folder
func (r *EntryRepo) CountByFolder(ctx context.Context, folderID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM entries e
		JOIN dictionaries d ON d.id = e.dictionary_id
		WHERE d.folder_id = $1
	`
	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count folder entries: %w", err)
	}
	return count, nil
}

// CountByDictionary returns the number of entries in a dictionary
func (r *EntryRepo) CountByDictionary(ctx context.Context, dictionaryID int64) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE dictionary_id = $1`, dictionaryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dictionary entries: %w", err)
	}
	return count, nil
}

// SearchEntries returns the user's entries whose word, translation or any
// example sentence contains query, case-insensitively
func (r *EntryRepo) SearchEntries(ctx context.Context, userID int64, query string, limit int) ([]domain.Entry, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	where := `
		WHERE f.user_id = $1
			AND (
				e.word ILIKE $2
				OR e.translation ILIKE $2
				OR EXISTS (SELECT 1 FROM examples ex WHERE ex.entry_id = e.id AND ex.sentence ILIKE $2)
			)
		ORDER BY e.word, e.id
		LIMIT $3
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, selectEntries+where, userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.DictionaryID, &e.OwnerID, &e.Word, &e.Translation, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
