package handler

import (
	"errors"
	"fmt"
	"strings"

	"lexicon/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	// Check authorization first
	authorized, err := h.authService.IsAuthorized(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	// If not authorized, check password
	if !authorized {
		if !h.authService.CheckPassword(text) {
			return c.Send("Непральна")
		}

		if err := h.authService.AuthorizeUser(ctx, userID); err != nil {
			h.logger.Error("Failed to authorize user", zap.Error(err))
			return c.Send(msgInternalError)
		}

		h.logger.Info("User authorized", zap.Int64("user_id", userID))
		h.ResetState(userID)
		return c.Send("✅ Доступ разрешён!\n\n"+msgMainMenu, mainMenuMarkup())
	}

	// User is authorized, handle based on state
	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingTranslation:
		return h.saveEntry(c, state.CurrentWord, text)

	case domain.StateWaitingExample:
		return h.saveExample(c, state.EntryID, text)

	case domain.StateWaitingFolderName:
		return h.saveFolder(c, text)

	case domain.StateWaitingDictionaryName:
		return h.saveDictionary(c, state.FolderID, text)

	case domain.StateWaitingSearch:
		h.ResetState(userID)
		return h.search(c, text)

	default:
		// Idle or waiting for a word: the text is the word
		h.SetState(userID, &domain.StateData{
			State:       domain.StateWaitingTranslation,
			CurrentWord: text,
		})
		return c.Send("Жду перевод", cancelMarkup())
	}
}

// handleAddWord starts the word input flow
func (h *Handler) handleAddWord(c tele.Context) error {
	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingWord})
	return h.show(c, "Отправь слово", cancelMarkup())
}

// saveEntry stores the word-translation pair and waits for the next word
func (h *Handler) saveEntry(c tele.Context, word, translation string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	dictionaryID := h.ActiveDictionary(userID)
	entry, err := h.entryService.AddEntryTo(ctx, userID, dictionaryID, word, translation)
	if dictionaryID != 0 && (errors.Is(err, domain.ErrDictionaryNotFound) || errors.Is(err, domain.ErrWrongOwner)) {
		// The chosen dictionary is gone, fall back to the default one
		h.SetActiveDictionary(userID, 0)
		entry, err = h.entryService.AddEntry(ctx, userID, word, translation)
	}
	if err != nil {
		if errors.Is(err, domain.ErrEntryExists) {
			h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})
			return c.Send(fmt.Sprintf("Слово «%s» уже есть в словаре. Отправь другое.", word), cancelMarkup())
		}
		h.logger.Error("Failed to save entry",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return c.Send("Не удалось сохранить слово. Попробуйте ещё раз.")
	}

	h.logger.Info("Entry saved",
		zap.Int64("user_id", userID),
		zap.Int64("entry_id", entry.ID),
		zap.String("word", entry.Word),
	)

	// Reset to waiting for next word
	h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("➕ Добавить пример", exampleAddData(entry.ID))),
		markup.Row(btnMainMenu),
	)
	return c.Send("✅ Сохранено!\n\nМожешь отправить следующее слово или вернуться в /start", markup)
}

// saveExample attaches the sentence to the entry chosen earlier
func (h *Handler) saveExample(c tele.Context, entryID int64, sentence string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	example, err := h.exampleService.AddExample(ctx, userID, entryID, sentence, domain.SourceUser)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEntryNotFound), errors.Is(err, domain.ErrWrongOwner):
			h.ResetState(userID)
			return c.Send("Это слово больше не существует.", mainMenuMarkup())
		}
		h.logger.Error("Failed to save example",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("entry_id", entryID),
		)
		return c.Send("Не удалось сохранить пример. Попробуйте ещё раз.")
	}

	h.logger.Info("Example saved",
		zap.Int64("user_id", userID),
		zap.Int64("entry_id", entryID),
		zap.Int64("example_id", example.ID),
	)

	h.ResetState(userID)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("📝 К слову", entryData(entryID))),
		markup.Row(btnMainMenu),
	)
	return c.Send("✅ Пример сохранён!", markup)
}
