package domain

import "errors"

var (
	ErrEmptyInput      = errors.New("word and translation cannot be empty")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrEntryExists     = errors.New("entry already exists in dictionary")
	ErrExampleNotFound = errors.New("example not found")
	ErrWrongOwner      = errors.New("resource belongs to another user")
	ErrInvalidMetric   = errors.New("unknown leaderboard metric")
	ErrInvalidSource   = errors.New("unknown example source")

	ErrEmptyName          = errors.New("name cannot be empty")
	ErrEmptyQuery         = errors.New("search query cannot be empty")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderExists       = errors.New("folder with that name already exists")
	ErrDictionaryNotFound = errors.New("dictionary not found")
	ErrDictionaryExists   = errors.New("dictionary with that name already exists in folder")
)
