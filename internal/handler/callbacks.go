package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"lexicon/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Prefixes of dynamic callback data
const (
	prefixPage          = "page_"
	prefixDay           = "day_"
	prefixEntry         = "entry_"
	prefixDeleteEntry   = "del_"
	prefixAddExample    = "ex_"
	prefixDeleteExample = "exdel_"

	prefixFolder           = "folder_"
	prefixDeleteFolder     = "delfolder_"
	prefixDictionary       = "dict_"
	prefixNewDictionary    = "newdict_"
	prefixDeleteDictionary = "deldict_"
	prefixUseDictionary    = "usedict_"
)

func pageData(page int) string             { return fmt.Sprintf("%s%d", prefixPage, page) }
func dayData(day domain.Day) string        { return prefixDay + day.DateString() }
func entryData(entryID int64) string       { return fmt.Sprintf("%s%d", prefixEntry, entryID) }
func deleteEntryData(entryID int64) string { return fmt.Sprintf("%s%d", prefixDeleteEntry, entryID) }
func exampleAddData(entryID int64) string  { return fmt.Sprintf("%s%d", prefixAddExample, entryID) }
func exampleDeleteData(exampleID int64) string {
	return fmt.Sprintf("%s%d", prefixDeleteExample, exampleID)
}

func folderData(folderID int64) string       { return fmt.Sprintf("%s%d", prefixFolder, folderID) }
func deleteFolderData(folderID int64) string { return fmt.Sprintf("%s%d", prefixDeleteFolder, folderID) }
func dictionaryData(dictID int64) string     { return fmt.Sprintf("%s%d", prefixDictionary, dictID) }
func newDictionaryData(folderID int64) string {
	return fmt.Sprintf("%s%d", prefixNewDictionary, folderID)
}
func deleteDictionaryData(dictID int64) string { return fmt.Sprintf("%s%d", prefixDeleteDictionary, dictID) }
func useDictionaryData(dictID int64) string    { return fmt.Sprintf("%s%d", prefixUseDictionary, dictID) }

// parseID extracts the positive numeric id following prefix
func parseID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid callback data %q: %w", data, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid callback data %q", data)
	}
	return id, nil
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it means it was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Static buttons whose Unique didn't come through
	if callback.Unique == "" {
		switch data {
		case btnAddWord.Unique:
			return h.handleAddWord(c)
		case btnViewDays.Unique, btnBackToDays.Unique:
			return h.handleViewDays(c)
		case btnRandomEntry.Unique, btnMore.Unique:
			return h.handleRandomEntry(c)
		case btnStats.Unique:
			return h.handleStats(c)
		case btnTop.Unique:
			return h.handleTop(c)
		case btnCancel.Unique:
			return h.handleCancel(c)
		case btnBack.Unique, btnMainMenu.Unique:
			return h.handleStart(c)
		case btnFolders.Unique, btnBackToFolders.Unique:
			return h.handleFolders(c)
		case btnNewFolder.Unique:
			return h.handleNewFolder(c)
		case btnSearch.Unique:
			return h.handleSearch(c)
		}
	}

	// Handle by Data prefix (dynamic buttons)
	switch {
	case strings.HasPrefix(data, prefixPage):
		return h.handlePagination(c, data)
	case strings.HasPrefix(data, prefixDay):
		return h.handleDaySelection(c, data)
	case strings.HasPrefix(data, prefixEntry):
		return h.handleEntry(c, data)
	case strings.HasPrefix(data, prefixDeleteEntry):
		return h.handleDeleteEntry(c, data)
	case strings.HasPrefix(data, prefixDeleteExample):
		return h.handleDeleteExample(c, data)
	case strings.HasPrefix(data, prefixAddExample):
		return h.handleAddExample(c, data)
	case strings.HasPrefix(data, prefixFolder):
		return h.handleFolder(c, data)
	case strings.HasPrefix(data, prefixDeleteFolder):
		return h.handleDeleteFolder(c, data)
	case strings.HasPrefix(data, prefixDictionary):
		return h.handleDictionary(c, data)
	case strings.HasPrefix(data, prefixNewDictionary):
		return h.handleNewDictionary(c, data)
	case strings.HasPrefix(data, prefixDeleteDictionary):
		return h.handleDeleteDictionary(c, data)
	case strings.HasPrefix(data, prefixUseDictionary):
		return h.handleUseDictionary(c, data)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleViewDays shows the first page of days with entries
func (h *Handler) handleViewDays(c tele.Context) error {
	return h.showDays(c, 1)
}

// handlePagination handles page navigation
func (h *Handler) handlePagination(c tele.Context, data string) error {
	page, err := strconv.Atoi(strings.TrimPrefix(data, prefixPage))
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная страница"})
	}
	return h.showDays(c, page)
}

func (h *Handler) showDays(c tele.Context, page int) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	days, totalPages, err := h.entryService.GetDaysList(ctx, userID, page)
	if err != nil {
		h.logger.Error("Failed to get days list", zap.Error(err))
		return h.fail(c, "Ошибка при загрузке данных")
	}

	if len(days) == 0 {
		if page > 1 {
			return h.fail(c, "Нет данных")
		}
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgNoEntries, ShowAlert: true})
		}
		return c.Send(msgNoEntries)
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}

	today := h.statsService.Today()
	for _, day := range days {
		btnText := fmt.Sprintf("%s (%d)", day.DisplayString(today), day.EntryCount)
		rows = append(rows, markup.Row(markup.Data(btnText, dayData(day))))
	}

	// Add pagination buttons
	if totalPages > 1 {
		navRow := tele.Row{}
		if page > 1 {
			navRow = append(navRow, markup.Data("⬅️", pageData(page-1)))
		}
		if page < totalPages {
			navRow = append(navRow, markup.Data("➡️", pageData(page+1)))
		}
		if len(navRow) > 0 {
			rows = append(rows, navRow)
		}
	}

	rows = append(rows, markup.Row(btnBack))
	markup.Inline(rows...)

	return h.show(c, "📅 Вот твои дни:\n\n", markup)
}

// handleDaySelection shows entries for selected day
func (h *Handler) handleDaySelection(c tele.Context, data string) error {
	userID := c.Sender().ID
	dateStr := strings.TrimPrefix(data, prefixDay)

	ctx, cancel := requestContext()
	defer cancel()

	entries, err := h.entryService.GetEntriesByDate(ctx, userID, dateStr)
	if err != nil {
		h.logger.Error("Failed to get entries by date", zap.Error(err), zap.String("date", dateStr))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}

	if len(entries) == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Нет слов за этот день"})
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(entries)+1)
	for _, entry := range entries {
		rows = append(rows, markup.Row(markup.Data("📝 "+entry.Word, entryData(entry.ID))))
	}
	rows = append(rows, markup.Row(btnBackToDays, btnMainMenu))
	markup.Inline(rows...)

	return h.show(c, formatEntries(entries), markup)
}

// handleEntry shows one entry with its examples
func (h *Handler) handleEntry(c tele.Context, data string) error {
	userID := c.Sender().ID
	entryID, err := parseID(data, prefixEntry)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверное слово"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	entry, examples, err := h.entryService.GetEntry(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Слово не найдено"})
		}
		h.logger.Error("Failed to get entry", zap.Error(err), zap.Int64("entry_id", entryID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(
			markup.Data("➕ Пример", exampleAddData(entry.ID)),
			markup.Data("🗑 Удалить", deleteEntryData(entry.ID)),
		),
	}
	for i, example := range examples {
		if !example.UserAuthored() {
			continue
		}
		rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("🗑 Пример %d", i+1), exampleDeleteData(example.ID))))
	}
	rows = append(rows, markup.Row(btnBackToDays, btnMainMenu))
	markup.Inline(rows...)

	return h.show(c, formatEntry(entry, examples), markup, tele.ModeHTML)
}

// handleDeleteEntry removes an entry with its examples
func (h *Handler) handleDeleteEntry(c tele.Context, data string) error {
	userID := c.Sender().ID
	entryID, err := parseID(data, prefixDeleteEntry)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверное слово"})
	}

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.entryService.DeleteEntry(ctx, userID, entryID); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Слово уже удалено"})
		}
		h.logger.Error("Failed to delete entry", zap.Error(err), zap.Int64("entry_id", entryID))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить"})
	}

	h.logger.Info("Entry deleted", zap.Int64("user_id", userID), zap.Int64("entry_id", entryID))
	return h.show(c, "🗑 Слово удалено\n\n"+msgMainMenu, mainMenuMarkup())
}

// handleAddExample waits for an example sentence for the entry
func (h *Handler) handleAddExample(c tele.Context, data string) error {
	entryID, err := parseID(data, prefixAddExample)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверное слово"})
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:   domain.StateWaitingExample,
		EntryID: entryID,
	})
	return h.show(c, "Отправь пример предложения с этим словом", cancelMarkup())
}

// handleDeleteExample removes an example sentence
func (h *Handler) handleDeleteExample(c tele.Context, data string) error {
	userID := c.Sender().ID
	exampleID, err := parseID(data, prefixDeleteExample)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пример"})
	}

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	if err := h.exampleService.DeleteExample(ctx, userID, exampleID); err != nil {
		if errors.Is(err, domain.ErrExampleNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Пример уже удалён"})
		}
		h.logger.Error("Failed to delete example", zap.Error(err), zap.Int64("example_id", exampleID))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить"})
	}

	h.logger.Info("Example deleted", zap.Int64("user_id", userID), zap.Int64("example_id", exampleID))
	return h.show(c, "🗑 Пример удалён\n\n"+msgMainMenu, mainMenuMarkup())
}

// handleRandomEntry shows a random word-translation pair
func (h *Handler) handleRandomEntry(c tele.Context) error {
	userID := c.Sender().ID

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	entry, err := h.entryService.GetRandomEntry(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to get random entry", zap.Error(err))
		return h.fail(c, "Ошибка при загрузке")
	}

	if entry == nil {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: msgNoEntries, ShowAlert: true})
		}
		return c.Send(msgNoEntries)
	}

	text := fmt.Sprintf("🎲 Случайная пара:\n\n📝 %s\n🔄 %s", entry.Word, entry.Translation)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnMore, markup.Data("📖 Подробнее", entryData(entry.ID))),
		markup.Row(btnBack),
	)
	return h.show(c, text, markup)
}
