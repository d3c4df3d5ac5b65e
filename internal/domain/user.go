package domain

import "time"

// User represents a bot user
type User struct {
	UserID     int64
	Username   string
	Authorized bool
	CreatedAt  time.Time
}

// UserState represents user's current interaction state
type UserState string

const (
	StateIdle                  UserState = "idle"
	StateWaitingWord           UserState = "waiting_word"
	StateWaitingTranslation    UserState = "waiting_translation"
	StateWaitingExample        UserState = "waiting_example"
	StateWaitingPassword       UserState = "waiting_password"
	StateWaitingFolderName     UserState = "waiting_folder_name"
	StateWaitingDictionaryName UserState = "waiting_dictionary_name"
	StateWaitingSearch         UserState = "waiting_search"
)

// StateData holds temporary data for user's current state
type StateData struct {
	State       UserState
	CurrentWord string
	EntryID     int64 // Entry the next example is attached to
	FolderID    int64 // Folder the next dictionary is created in
}
