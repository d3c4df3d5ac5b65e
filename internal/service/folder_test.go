package service

import (
	"context"
	"errors"
	"testing"

	"lexicon/internal/domain"
	"lexicon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFolderService() (*FolderService, entryServiceMocks) {
	m := newEntryServiceMocks()
	return NewFolderService(m.folders, m.entries, m.examples, m.stats, m.tx), m
}

func TestFolderService_CreateFolder(t *testing.T) {
	tests := []struct {
		name             string
		folderName       string
		language         string
		expectedName     string
		expectedLanguage string
		expectedError    error
	}{
		{
			name:             "with language",
			folderName:       " Korean ",
			language:         "Korean",
			expectedName:     "Korean",
			expectedLanguage: "Korean",
		},
		{
			name:             "language defaults to English",
			folderName:       "Idioms",
			language:         "  ",
			expectedName:     "Idioms",
			expectedLanguage: domain.DefaultFolderLanguage,
		},
		{
			name:          "empty name",
			folderName:    "   ",
			expectedError: domain.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newFolderService()
			if tt.expectedError == nil {
				m.folders.On("CreateFolder", int64(123), tt.expectedName, tt.expectedLanguage).
					Return(&domain.Folder{ID: 4, UserID: 123, Name: tt.expectedName, Language: tt.expectedLanguage}, nil)
			}

			folder, err := service.CreateFolder(context.Background(), 123, tt.folderName, tt.language)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				m.folders.AssertNotCalled(t, "CreateFolder", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, folder.Name)
			m.folders.AssertExpectations(t)
		})
	}
}

func TestFolderService_GetFolder(t *testing.T) {
	service, m := newFolderService()
	m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 123, Name: "Korean"}, nil)
	m.folders.On("ListDictionaries", int64(4)).Return([]domain.Dictionary{{ID: 12, FolderID: 4, OwnerID: 123}}, nil)

	folder, dicts, err := service.GetFolder(context.Background(), 123, 4)

	require.NoError(t, err)
	assert.Equal(t, "Korean", folder.Name)
	assert.Len(t, dicts, 1)

	_, _, err = service.GetFolder(context.Background(), 456, 4)
	assert.ErrorIs(t, err, domain.ErrWrongOwner)
}

func TestFolderService_DeleteFolder(t *testing.T) {
	t.Run("uncounts every cascaded example and entry", func(t *testing.T) {
		service, m := newFolderService()
		examples := []domain.Example{
			*testutil.NewTestExample(1, 10, 123, domain.SourceUser),
			*testutil.NewTestExample(2, 10, 123, domain.SourceGenerated),
			*testutil.NewTestExample(3, 11, 123, domain.SourceUser),
		}

		m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 123}, nil)
		m.examples.On("ListByFolder", int64(4)).Return(examples, nil)
		m.entries.On("CountByFolder", int64(4)).Return(5, nil)
		m.folders.On("DeleteFolder", int64(4)).Return(nil)
		m.stats.On("OnExampleDeleted", mock.AnythingOfType("*domain.Example")).Return(nil).Times(3)
		m.stats.On("OnEntryDeleted", int64(123)).Return(nil).Times(5)

		removed, err := service.DeleteFolder(context.Background(), 123, 4)

		require.NoError(t, err)
		assert.Equal(t, 5, removed)
		assert.Equal(t, 1, m.tx.Calls())
		assert.Equal(t, 1, m.stats.Locks())
		assert.True(t, m.stats.Balanced())
		m.folders.AssertExpectations(t)
		m.stats.AssertExpectations(t)
	})

	t.Run("folder of another user", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 999}, nil)

		_, err := service.DeleteFolder(context.Background(), 123, 4)

		assert.ErrorIs(t, err, domain.ErrWrongOwner)
		m.folders.AssertNotCalled(t, "DeleteFolder", mock.Anything)
		m.stats.AssertNotCalled(t, "OnEntryDeleted", mock.Anything)
	})

	t.Run("statistics failure fails the deletion", func(t *testing.T) {
		statsErr := errors.New("serialization failure")
		service, m := newFolderService()
		m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 123}, nil)
		m.examples.On("ListByFolder", int64(4)).Return(nil, nil)
		m.entries.On("CountByFolder", int64(4)).Return(2, nil)
		m.folders.On("DeleteFolder", int64(4)).Return(nil)
		m.stats.On("OnEntryDeleted", int64(123)).Return(statsErr).Once()

		removed, err := service.DeleteFolder(context.Background(), 123, 4)

		assert.ErrorIs(t, err, statsErr)
		assert.Zero(t, removed)
		assert.True(t, m.stats.Balanced())
	})
}

func TestFolderService_CreateDictionary(t *testing.T) {
	t.Run("created in own folder", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 123}, nil)
		m.folders.On("CreateDictionary", int64(4), "Verbs").Return(&domain.Dictionary{ID: 12, FolderID: 4, Name: "Verbs"}, nil)

		dict, err := service.CreateDictionary(context.Background(), 123, 4, " Verbs ")

		require.NoError(t, err)
		assert.Equal(t, int64(123), dict.OwnerID)
	})

	t.Run("folder of another user", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetFolder", int64(4)).Return(&domain.Folder{ID: 4, UserID: 999}, nil)

		_, err := service.CreateDictionary(context.Background(), 123, 4, "Verbs")

		assert.ErrorIs(t, err, domain.ErrWrongOwner)
		m.folders.AssertNotCalled(t, "CreateDictionary", mock.Anything, mock.Anything)
	})

	t.Run("empty name", func(t *testing.T) {
		service, m := newFolderService()

		_, err := service.CreateDictionary(context.Background(), 123, 4, "")

		assert.ErrorIs(t, err, domain.ErrEmptyName)
		m.folders.AssertNotCalled(t, "GetFolder", mock.Anything)
	})
}

func TestFolderService_DeleteDictionary(t *testing.T) {
	t.Run("uncounts every cascaded example and entry", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetDictionary", int64(12)).Return(&domain.Dictionary{ID: 12, FolderID: 4, OwnerID: 123}, nil)
		m.examples.On("ListByDictionary", int64(12)).
			Return([]domain.Example{*testutil.NewTestExample(1, 10, 123, domain.SourceUser)}, nil)
		m.entries.On("CountByDictionary", int64(12)).Return(2, nil)
		m.folders.On("DeleteDictionary", int64(12)).Return(nil)
		m.stats.On("OnExampleDeleted", mock.AnythingOfType("*domain.Example")).Return(nil).Once()
		m.stats.On("OnEntryDeleted", int64(123)).Return(nil).Twice()

		removed, err := service.DeleteDictionary(context.Background(), 123, 12)

		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.True(t, m.stats.Balanced())
		m.folders.AssertExpectations(t)
		m.stats.AssertExpectations(t)
	})

	t.Run("dictionary of another user", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetDictionary", int64(12)).Return(&domain.Dictionary{ID: 12, OwnerID: 999}, nil)

		_, err := service.DeleteDictionary(context.Background(), 123, 12)

		assert.ErrorIs(t, err, domain.ErrWrongOwner)
		m.folders.AssertNotCalled(t, "DeleteDictionary", mock.Anything)
	})

	t.Run("missing dictionary", func(t *testing.T) {
		service, m := newFolderService()
		m.folders.On("GetDictionary", int64(12)).Return(nil, domain.ErrDictionaryNotFound)

		_, err := service.DeleteDictionary(context.Background(), 123, 12)

		assert.ErrorIs(t, err, domain.ErrDictionaryNotFound)
	})
}
