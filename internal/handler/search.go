package handler

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"lexicon/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleSearch runs "/search <query>" or asks for the query
func (h *Handler) handleSearch(c tele.Context) error {
	if c.Callback() == nil {
		if query := strings.TrimSpace(c.Message().Payload); query != "" {
			return h.search(c, query)
		}
	}

	h.SetState(c.Sender().ID, &domain.StateData{State: domain.StateWaitingSearch})
	return h.show(c, "🔍 Что ищем? Отправь слово, перевод или часть примера", cancelMarkup())
}

// search sends the entries matching query
func (h *Handler) search(c tele.Context, query string) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	entries, err := h.entryService.SearchEntries(ctx, userID, query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			return c.Send("Запрос пустой. Отправь слово для поиска", cancelMarkup())
		}
		h.logger.Error("Failed to search entries", zap.Error(err), zap.Int64("user_id", userID))
		return c.Send(msgInternalError)
	}

	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(entries)+1)
	for _, entry := range entries {
		rows = append(rows, markup.Row(markup.Data("📝 "+entry.Word, entryData(entry.ID))))
	}
	rows = append(rows, markup.Row(btnSearch, btnMainMenu))
	markup.Inline(rows...)

	return c.Send(formatSearchResults(query, entries), markup, tele.ModeHTML)
}

func formatSearchResults(query string, entries []domain.Entry) string {
	query = strings.TrimSpace(query)
	if len(entries) == 0 {
		return fmt.Sprintf("🔍 По запросу «%s» ничего не нашлось", html.EscapeString(query))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Найдено по запросу «%s» (%d):\n\n", html.EscapeString(query), len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, highlightHTML(entry.Word, query), highlightHTML(entry.Translation, query))
	}
	return b.String()
}

// highlightHTML escapes text for HTML mode and bolds the forms of word in it
func highlightHTML(text, word string) string {
	var b strings.Builder
	for _, fragment := range domain.Highlight(text, word) {
		if fragment.Match {
			b.WriteString("<b>" + html.EscapeString(fragment.Text) + "</b>")
			continue
		}
		b.WriteString(html.EscapeString(fragment.Text))
	}
	return b.String()
}
