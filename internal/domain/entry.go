package domain

import "time"

// Entry is a word with its translation stored in one of the user's dictionaries
type Entry struct {
	ID           int64
	DictionaryID int64
	OwnerID      int64
	Word         string
	Translation  string
	CreatedAt    time.Time
}

// ExampleSource tells who wrote an example sentence
type ExampleSource string

const (
	SourceUser      ExampleSource = "user"
	SourceGenerated ExampleSource = "generated"
)

// Valid reports whether the source is one of the known provenances
func (s ExampleSource) Valid() bool {
	return s == SourceUser || s == SourceGenerated
}

// Example is a sentence illustrating usage of an entry.
// OwnerID is resolved through entry -> dictionary -> folder -> user.
type Example struct {
	ID        int64
	EntryID   int64
	OwnerID   int64
	Sentence  string
	Source    ExampleSource
	CreatedAt time.Time
}

// UserAuthored reports whether the example counts towards statistics
func (e Example) UserAuthored() bool {
	return e.Source == SourceUser
}
