package handler

import (
	"fmt"
	"html"
	"strings"
	"time"

	"lexicon/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// leaderboardSections titles every metric of the leaderboard in display order
var leaderboardSections = []struct {
	metric domain.Metric
	title  string
}{
	{domain.MetricTotalEntries, "📝 Больше всего слов"},
	{domain.MetricTotalExamples, "💬 Больше всего примеров"},
	{domain.MetricWeeklyEntries, "📆 Слов за неделю"},
	{domain.MetricWeeklyExamples, "🗓 Примеров за неделю"},
	{domain.MetricMaxStreak, "🔥 Лучшие серии"},
}

// handleStats shows the user's own statistics
func (h *Handler) handleStats(c tele.Context) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	stats, err := h.statsService.GetUserStatistics(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to get user statistics", zap.Error(err), zap.Int64("user_id", userID))
		return h.fail(c, "Ошибка при загрузке статистики")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnTop, btnBack))
	return h.show(c, formatStatistics(stats, h.statsService.Today()), markup)
}

// handleTop shows the leaderboard
func (h *Handler) handleTop(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	board, err := h.statsService.GetLeaderboard(ctx, h.topLimit)
	if err != nil {
		h.logger.Error("Failed to get leaderboard", zap.Error(err))
		return h.fail(c, "Ошибка при загрузке рейтинга")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnStats, btnBack))
	return h.show(c, formatLeaderboard(board), markup)
}

func formatStatistics(stats *domain.UserStatistics, today time.Time) string {
	var b strings.Builder
	b.WriteString("📊 Твоя статистика\n\n")
	fmt.Fprintf(&b, "📝 Слов всего: %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "📆 Слов за неделю: %d\n", stats.WeeklyEntries)
	fmt.Fprintf(&b, "💬 Примеров всего: %d\n", stats.TotalExamples)
	fmt.Fprintf(&b, "🗓 Примеров за неделю: %d\n\n", stats.WeeklyExamples)
	fmt.Fprintf(&b, "🔥 Текущая серия: %d дн.\n", stats.CurrentStreak)
	fmt.Fprintf(&b, "🏆 Лучшая серия: %d дн.\n", stats.MaxStreak)

	if stats.LastEntryDate != nil {
		last := domain.Day{Date: *stats.LastEntryDate}
		fmt.Fprintf(&b, "\nПоследнее слово: %s", last.DisplayString(today))
		if domain.DaysBetween(*stats.LastEntryDate, today) > 1 {
			b.WriteString("\nСерия прервана, добавь слово сегодня, чтобы начать новую")
		}
	}
	return b.String()
}

func formatLeaderboard(board *domain.Leaderboard) string {
	var b strings.Builder
	b.WriteString("🏆 Лидеры\n")

	for _, section := range leaderboardSections {
		fmt.Fprintf(&b, "\n%s\n", section.title)

		ranking := board.Get(section.metric)
		if len(ranking) == 0 {
			b.WriteString("пока никого\n")
			continue
		}
		for i, stats := range ranking {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, displayName(stats), section.metric.Value(stats))
		}
	}
	return b.String()
}

func formatEntries(entries []domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Слова за выбранный день (%d):\n\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s — %s\n\n", i+1, entry.Word, entry.Translation)
	}
	return b.String()
}

// formatEntry renders an entry for HTML mode with the word bolded in its examples
func formatEntry(entry *domain.Entry, examples []domain.Example) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 <b>%s</b>\n🔄 %s\n", html.EscapeString(entry.Word), html.EscapeString(entry.Translation))

	if len(examples) == 0 {
		b.WriteString("\nПримеров пока нет")
		return b.String()
	}

	b.WriteString("\nПримеры:\n")
	for i, example := range examples {
		marker := ""
		if !example.UserAuthored() {
			marker = " 🤖"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, highlightHTML(example.Sentence, entry.Word), marker)
	}
	return b.String()
}

func displayName(stats domain.UserStatistics) string {
	if stats.Username != "" {
		return "@" + stats.Username
	}
	return fmt.Sprintf("id%d", stats.UserID)
}
