package handler

import (
	"strings"
	"sync"
	"testing"
	"time"

	"lexicon/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "test_data",
			expected: "test_data",
		},
		{
			name:     "string with whitespace",
			input:    "  test_data  ",
			expected: "test_data",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "string with tab",
			input:    "test\tdata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		prefix      string
		expected    int64
		expectError bool
	}{
		{name: "entry", data: "entry_42", prefix: prefixEntry, expected: 42},
		{name: "delete entry", data: "del_7", prefix: prefixDeleteEntry, expected: 7},
		{name: "delete example", data: "exdel_1234567890123", prefix: prefixDeleteExample, expected: 1234567890123},
		{name: "not a number", data: "entry_abc", prefix: prefixEntry, expectError: true},
		{name: "empty id", data: "ex_", prefix: prefixAddExample, expectError: true},
		{name: "zero", data: "entry_0", prefix: prefixEntry, expectError: true},
		{name: "negative", data: "del_-5", prefix: prefixDeleteEntry, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseID(tt.data, tt.prefix)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestCallbackData(t *testing.T) {
	day := domain.Day{Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "page_3", pageData(3))
	assert.Equal(t, "day_20240309", dayData(day))
	assert.Equal(t, "entry_5", entryData(5))
	assert.Equal(t, "del_5", deleteEntryData(5))
	assert.Equal(t, "ex_5", exampleAddData(5))
	assert.Equal(t, "exdel_9", exampleDeleteData(9))

	// every builder round-trips through parseID with its own prefix only
	id, err := parseID(cleanCallbackData("\f"+exampleDeleteData(9)), prefixDeleteExample)
	assert.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.False(t, strings.HasPrefix(exampleDeleteData(9), prefixAddExample))
	assert.False(t, strings.HasPrefix(exampleDeleteData(9), prefixDeleteEntry))
}

func TestFolderCallbackData(t *testing.T) {
	assert.Equal(t, "folder_4", folderData(4))
	assert.Equal(t, "delfolder_4", deleteFolderData(4))
	assert.Equal(t, "dict_12", dictionaryData(12))
	assert.Equal(t, "newdict_4", newDictionaryData(4))
	assert.Equal(t, "deldict_12", deleteDictionaryData(12))
	assert.Equal(t, "usedict_12", useDictionaryData(12))

	// the router matches prefixes, so none may start another
	prefixes := []string{
		prefixPage, prefixDay, prefixEntry, prefixDeleteEntry, prefixAddExample, prefixDeleteExample,
		prefixFolder, prefixDeleteFolder, prefixDictionary, prefixNewDictionary,
		prefixDeleteDictionary, prefixUseDictionary,
	}
	for _, p := range prefixes {
		for _, q := range prefixes {
			if p != q {
				assert.False(t, strings.HasPrefix(q, p), "%s starts %s", p, q)
			}
		}
	}

	id, err := parseID(deleteDictionaryData(12), prefixDeleteDictionary)
	assert.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestHandler_State(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil, nil, 5, zap.NewNop())

	assert.Equal(t, domain.StateIdle, h.GetState(1).State)

	h.SetState(1, &domain.StateData{State: domain.StateWaitingExample, EntryID: 10})
	state := h.GetState(1)
	assert.Equal(t, domain.StateWaitingExample, state.State)
	assert.Equal(t, int64(10), state.EntryID)
	assert.Equal(t, domain.StateIdle, h.GetState(2).State)

	h.ResetState(1)
	assert.Equal(t, domain.StateIdle, h.GetState(1).State)
}

func TestHandler_LockUser(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil, nil, 5, zap.NewNop())

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := h.lockUser(1)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
	assert.Zero(t, h.callbackLocks.Len(), "released locks are dropped")
}

func TestHandler_ActiveDictionary(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil, nil, 5, zap.NewNop())

	assert.Zero(t, h.ActiveDictionary(1))

	h.SetActiveDictionary(1, 12)
	assert.Equal(t, int64(12), h.ActiveDictionary(1))
	assert.Zero(t, h.ActiveDictionary(2))

	h.SetActiveDictionary(1, 0)
	assert.Zero(t, h.ActiveDictionary(1))
	assert.Empty(t, h.active)
}

func TestParseFolderInput(t *testing.T) {
	tests := []struct {
		input    string
		name     string
		language string
	}{
		{input: "Korean; Korean", name: "Korean", language: "Korean"},
		{input: "  Idioms  ", name: "Idioms"},
		{input: "Слова;", name: "Слова"},
		{input: "a; b; c", name: "a", language: "b; c"},
		{input: ";English", language: "English"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, language := parseFolderInput(tt.input)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.language, language)
		})
	}
}
