package domain

import "time"

// Day represents a day with entry count
type Day struct {
	Date       time.Time
	EntryCount int
}

// DateString returns date in YYYYMMDD format
func (d Day) DateString() string {
	return d.Date.Format("20060102")
}

var monthNames = []string{
	"", "янв", "фев", "мар", "апр", "мая", "июн",
	"июл", "авг", "сен", "окт", "ноя", "дек",
}

// DisplayString returns user-friendly date string relative to now
func (d Day) DisplayString(now time.Time) string {
	switch DaysBetween(d.Date, now) {
	case 0:
		return "Сегодня"
	case 1:
		return "Вчера"
	}
	return d.Date.Format("2 ") + monthNames[d.Date.Month()] + d.Date.Format(" 2006")
}

// CalendarDay truncates t to midnight of its calendar date.
// The result is expressed in UTC so that day arithmetic is free of DST shifts;
// convert t into the wanted location before calling.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b
func DaysBetween(a, b time.Time) int {
	return int(CalendarDay(b).Sub(CalendarDay(a)).Hours() / 24)
}
