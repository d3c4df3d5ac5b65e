package domain

import "strings"

// DefaultFolderLanguage is used when a folder is created without a language
const DefaultFolderLanguage = "English"

// Folder groups a user's dictionaries of one language
type Folder struct {
	ID              int64
	UserID          int64
	Name            string
	Language        string
	DictionaryCount int
}

// Dictionary is a named list of entries inside a folder
type Dictionary struct {
	ID         int64
	FolderID   int64
	OwnerID    int64
	Name       string
	EntryCount int
}

// CleanName trims a folder or dictionary name and rejects empty ones
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
