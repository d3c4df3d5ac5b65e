package handler

import (
	"errors"
	"fmt"
	"strings"

	"lexicon/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// maxDictionaryButtons caps entry buttons under a dictionary
const maxDictionaryButtons = 20

// handleFolders lists the user's folders
func (h *Handler) handleFolders(c tele.Context) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	folders, err := h.folderService.ListFolders(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to list folders", zap.Error(err), zap.Int64("user_id", userID))
		return h.fail(c, "Ошибка при загрузке папок")
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(folders)+2)
	for _, folder := range folders {
		text := fmt.Sprintf("📁 %s · %s (%d)", folder.Name, folder.Language, folder.DictionaryCount)
		rows = append(rows, markup.Row(markup.Data(text, folderData(folder.ID))))
	}
	rows = append(rows, markup.Row(btnNewFolder), markup.Row(btnBack))
	markup.Inline(rows...)

	text := "📁 Твои папки:"
	if len(folders) == 0 {
		text = "📁 Папок пока нет. Первая появится вместе с первым словом."
	}
	return h.show(c, text, markup)
}

// handleNewFolder waits for the name of a new folder
func (h *Handler) handleNewFolder(c tele.Context) error {
	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingFolderName})
	return h.show(c, "Отправь название папки. Язык можно указать через «;», например: Корейский; Korean", cancelMarkup())
}

// parseFolderInput splits "name; language" typed by the user
func parseFolderInput(text string) (name, language string) {
	name, language, _ = strings.Cut(text, ";")
	return strings.TrimSpace(name), strings.TrimSpace(language)
}

// saveFolder creates the folder named in text
func (h *Handler) saveFolder(c tele.Context, text string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	name, language := parseFolderInput(text)
	folder, err := h.folderService.CreateFolder(ctx, userID, name, language)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyName):
			return c.Send("Название не может быть пустым", cancelMarkup())
		case errors.Is(err, domain.ErrFolderExists):
			return c.Send(fmt.Sprintf("Папка «%s» уже есть. Отправь другое название.", name), cancelMarkup())
		}
		h.logger.Error("Failed to create folder", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send("Не удалось создать папку. Попробуйте ещё раз.")
	}

	h.logger.Info("Folder created", zap.Int64("user_id", userID), zap.Int64("folder_id", folder.ID))
	h.ResetState(userID)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("📁 Открыть", folderData(folder.ID))),
		markup.Row(btnBackToFolders),
	)
	return c.Send(fmt.Sprintf("✅ Папка «%s» создана", folder.Name), markup)
}

// handleFolder shows one folder with its dictionaries
func (h *Handler) handleFolder(c tele.Context, data string) error {
	userID := c.Sender().ID
	folderID, err := parseID(data, prefixFolder)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная папка"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	folder, dictionaries, err := h.folderService.GetFolder(ctx, userID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrFolderNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Папка не найдена"})
		}
		h.logger.Error("Failed to get folder", zap.Error(err), zap.Int64("folder_id", folderID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(dictionaries)+3)
	for _, dict := range dictionaries {
		text := fmt.Sprintf("📖 %s (%d)", dict.Name, dict.EntryCount)
		rows = append(rows, markup.Row(markup.Data(text, dictionaryData(dict.ID))))
	}
	rows = append(rows,
		markup.Row(
			markup.Data("➕ Словарь", newDictionaryData(folder.ID)),
			markup.Data("🗑 Удалить папку", deleteFolderData(folder.ID)),
		),
		markup.Row(btnBackToFolders, btnMainMenu),
	)
	markup.Inline(rows...)

	return h.show(c, formatFolder(folder, len(dictionaries)), markup)
}

// handleDeleteFolder removes a folder with everything in it
func (h *Handler) handleDeleteFolder(c tele.Context, data string) error {
	userID := c.Sender().ID
	folderID, err := parseID(data, prefixDeleteFolder)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная папка"})
	}

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	removed, err := h.folderService.DeleteFolder(ctx, userID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrFolderNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Папка уже удалена"})
		}
		h.logger.Error("Failed to delete folder", zap.Error(err), zap.Int64("folder_id", folderID))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить"})
	}

	h.logger.Info("Folder deleted",
		zap.Int64("user_id", userID),
		zap.Int64("folder_id", folderID),
		zap.Int("entries", removed),
	)
	h.SetActiveDictionary(userID, 0)

	return h.show(c, fmt.Sprintf("🗑 Папка удалена, слов удалено: %d\n\n%s", removed, msgMainMenu), mainMenuMarkup())
}

// handleNewDictionary waits for the name of a new dictionary in the folder
func (h *Handler) handleNewDictionary(c tele.Context, data string) error {
	folderID, err := parseID(data, prefixNewDictionary)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная папка"})
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:    domain.StateWaitingDictionaryName,
		FolderID: folderID,
	})
	return h.show(c, "Отправь название словаря", cancelMarkup())
}

// saveDictionary creates a dictionary named text in the folder chosen earlier
func (h *Handler) saveDictionary(c tele.Context, folderID int64, text string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	dict, err := h.folderService.CreateDictionary(ctx, userID, folderID, text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyName):
			return c.Send("Название не может быть пустым", cancelMarkup())
		case errors.Is(err, domain.ErrDictionaryExists):
			return c.Send("Такой словарь в папке уже есть. Отправь другое название.", cancelMarkup())
		case errors.Is(err, domain.ErrFolderNotFound), errors.Is(err, domain.ErrWrongOwner):
			h.ResetState(userID)
			return c.Send("Эта папка больше не существует.", mainMenuMarkup())
		}
		h.logger.Error("Failed to create dictionary", zap.Error(err), zap.Int64("folder_id", folderID))
		return c.Send("Не удалось создать словарь. Попробуйте ещё раз.")
	}

	h.logger.Info("Dictionary created", zap.Int64("user_id", userID), zap.Int64("dictionary_id", dict.ID))
	h.ResetState(userID)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("📖 Открыть", dictionaryData(dict.ID))),
		markup.Row(markup.Data("◀️ К папке", folderData(folderID))),
	)
	return c.Send(fmt.Sprintf("✅ Словарь «%s» создан", dict.Name), markup)
}

// handleDictionary shows a dictionary with its entries
func (h *Handler) handleDictionary(c tele.Context, data string) error {
	userID := c.Sender().ID
	dictionaryID, err := parseID(data, prefixDictionary)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный словарь"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	dict, entries, err := h.entryService.GetDictionaryEntries(ctx, userID, dictionaryID)
	if err != nil {
		if errors.Is(err, domain.ErrDictionaryNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Словарь не найден"})
		}
		h.logger.Error("Failed to get dictionary", zap.Error(err), zap.Int64("dictionary_id", dictionaryID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for i, entry := range entries {
		if i == maxDictionaryButtons {
			break
		}
		rows = append(rows, markup.Row(markup.Data("📝 "+entry.Word, entryData(entry.ID))))
	}

	useText := "✏️ Добавлять сюда"
	if h.ActiveDictionary(userID) == dict.ID {
		useText = "✅ Слова идут сюда"
	}
	rows = append(rows,
		markup.Row(
			markup.Data(useText, useDictionaryData(dict.ID)),
			markup.Data("🗑 Удалить словарь", deleteDictionaryData(dict.ID)),
		),
		markup.Row(markup.Data("◀️ К папке", folderData(dict.FolderID)), btnMainMenu),
	)
	markup.Inline(rows...)

	return h.show(c, formatDictionary(dict, entries), markup)
}

// handleUseDictionary sends the user's next words to the dictionary
func (h *Handler) handleUseDictionary(c tele.Context, data string) error {
	userID := c.Sender().ID
	dictionaryID, err := parseID(data, prefixUseDictionary)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный словарь"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	dict, _, err := h.entryService.GetDictionaryEntries(ctx, userID, dictionaryID)
	if err != nil {
		if errors.Is(err, domain.ErrDictionaryNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Словарь не найден"})
		}
		h.logger.Error("Failed to get dictionary", zap.Error(err), zap.Int64("dictionary_id", dictionaryID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}

	h.SetActiveDictionary(userID, dict.ID)
	h.SetState(userID, &domain.StateData{State: domain.StateWaitingWord})
	return h.show(c, fmt.Sprintf("Новые слова пойдут в «%s». Отправь слово", dict.Name), cancelMarkup())
}

// handleDeleteDictionary removes a dictionary with its entries
func (h *Handler) handleDeleteDictionary(c tele.Context, data string) error {
	userID := c.Sender().ID
	dictionaryID, err := parseID(data, prefixDeleteDictionary)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный словарь"})
	}

	unlock := h.lockUser(userID)
	defer unlock()

	ctx, cancel := requestContext()
	defer cancel()

	removed, err := h.folderService.DeleteDictionary(ctx, userID, dictionaryID)
	if err != nil {
		if errors.Is(err, domain.ErrDictionaryNotFound) || errors.Is(err, domain.ErrWrongOwner) {
			return c.Respond(&tele.CallbackResponse{Text: "Словарь уже удалён"})
		}
		h.logger.Error("Failed to delete dictionary", zap.Error(err), zap.Int64("dictionary_id", dictionaryID))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить"})
	}

	h.logger.Info("Dictionary deleted",
		zap.Int64("user_id", userID),
		zap.Int64("dictionary_id", dictionaryID),
		zap.Int("entries", removed),
	)
	if h.ActiveDictionary(userID) == dictionaryID {
		h.SetActiveDictionary(userID, 0)
	}

	return h.show(c, fmt.Sprintf("🗑 Словарь удалён, слов удалено: %d\n\n%s", removed, msgMainMenu), mainMenuMarkup())
}

func formatFolder(folder *domain.Folder, dictionaries int) string {
	text := fmt.Sprintf("📁 %s\nЯзык: %s\n\n", folder.Name, folder.Language)
	if dictionaries == 0 {
		return text + "Словарей пока нет"
	}
	return text + "Словари:"
}

func formatDictionary(dict *domain.Dictionary, entries []domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s (%d)\n\n", dict.Name, len(entries))
	if len(entries) == 0 {
		b.WriteString("Слов пока нет")
		return b.String()
	}
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, entry.Word, entry.Translation)
	}
	return b.String()
}
