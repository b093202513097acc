// Package render formats an analysis result as a localized HTML chat report.
package render

import (
	"fmt"
	"strings"

	"github.com/vadim/chat-pulse/internal/domain/chat/analysis"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// Locale selects the report language
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// ParseLocale validates a configured locale string
func ParseLocale(s string) (Locale, error) {
	switch Locale(s) {
	case LocaleEN, LocaleRU:
		return Locale(s), nil
	}
	return "", fmt.Errorf("%w: %q", entity.ErrUnknownLocale, s)
}

type labels struct {
	title        string
	total        string
	perUser      string // count line: name, count, reply ratio, msgs ratio
	startedFirst string
	startedLine  string
	avgTextSize  string
	avgTextLine  string
	topDays      string
	maxConvTime  string
	maxConvBody  string
	streak       string
	placeholder  string
	noData       string
	failed       string
}

var localeLabels = map[Locale]labels{
	LocaleEN: {
		title:        "<b>Chat Stats:</b>\n\n",
		total:        "<b>Total Messages:</b> %d\n",
		perUser:      "<b>%s:</b> %d messages, reply ratio: %.2f, msgs ratio: %.2f\n",
		startedFirst: "\n<b>Started first:</b>\n<i>",
		startedLine:  "<b>%s:</b> ratio: %.2f, av. answer time: %s\n",
		avgTextSize:  "\n<b>Av. text size:</b>\n<i>",
		avgTextLine:  "<b>%s:</b> %.2f symb.\n",
		topDays:      "\n<b>Top Messages:</b>\n<i>",
		maxConvTime:  "\n<b>Maximum Conversation Time:</b>\n",
		maxConvBody:  "<i>Detailed: %.2fh.\nBrief: %.2fh.</i>",
		streak:       "\n\n<b>🔥 Streak:</b> <i>%d days</i>",
		placeholder:  "Creating stats....",
		noData:       "Not enough data: the chat needs messages from two participants.",
		failed:       "Could not build the report, try again later.",
	},
	LocaleRU: {
		title:        "<b>Статистика чата:</b>\n\n",
		total:        "<b>Всего сообщений:</b> %d\n",
		perUser:      "<b>%s:</b> %d сообщений, коэф.о.: %.2f, коэф.сообщ.: %.2f\n",
		startedFirst: "\n<b>Написал первым/ой:</b>\n<i>",
		startedLine:  "<b>%s:</b> коэф.: %.2f, ср. время ответа: %s\n",
		avgTextSize:  "\n<b>Средний размер текста:</b>\n<i>",
		avgTextLine:  "<b>%s:</b> %.2f симв.\n",
		topDays:      "\n<b>Топ сообщений:</b>\n<i>",
		maxConvTime:  "\n<b>Максимальное время общения:</b>\n",
		maxConvBody:  "<i>Подробное: %.2fч.\nКраткое: %.2fч.</i>",
		streak:       "\n\n<b>🔥 Streak:</b> <i>%d дней</i>",
		placeholder:  "Собираю статистику....",
		noData:       "Недостаточно данных: в чате нужны сообщения обоих участников.",
		failed:       "Не удалось собрать отчёт, попробуйте позже.",
	},
}

// Placeholder returns the interim message posted before computation finishes
func Placeholder(locale Locale) string {
	return localeLabels[locale].placeholder
}

// InsufficientData returns the localized notice shown instead of a report
func InsufficientData(locale Locale) string {
	return localeLabels[locale].noData
}

// Failed returns the localized notice for a computation that errored out
func Failed(locale Locale) string {
	return localeLabels[locale].failed
}

// Report renders the full HTML report. Names maps sender ids to display
// names; senders missing from the map are shown by id.
func Report(res *analysis.Result, names map[string]string, locale Locale) string {
	l := localeLabels[locale]
	var b strings.Builder

	b.WriteString(l.title)
	b.WriteString(fmt.Sprintf(l.total, res.TotalMessages))

	var started, avgText strings.Builder
	started.WriteString(l.startedFirst)
	avgText.WriteString(l.avgTextSize)

	for _, u := range []analysis.UserSummary{res.UserA, res.UserB} {
		name := names[u.UserID]
		if name == "" {
			name = u.UserID
		}

		b.WriteString(fmt.Sprintf(l.perUser, name, u.Messages, u.CountRatio, u.MessageShare))
		started.WriteString(fmt.Sprintf(l.startedLine, name, u.StartShare, formatSeconds(u.AvgResponseSeconds)))
		avgText.WriteString(fmt.Sprintf(l.avgTextLine, name, u.AvgTextLength))
	}

	started.WriteString("</i>")
	avgText.WriteString("</i>")
	b.WriteString(started.String())
	b.WriteString(avgText.String())

	b.WriteString(l.topDays)
	for _, dc := range res.BusiestDays {
		b.WriteString(fmt.Sprintf("%s - %d\n", strings.ReplaceAll(dc.Day, "_", "."), dc.Count))
	}
	b.WriteString("...\n")
	// Quietest days print bottom-up so the list reads busiest to quietest
	for i := len(res.QuietestDays) - 1; i >= 0; i-- {
		dc := res.QuietestDays[i]
		b.WriteString(fmt.Sprintf("%s - %d\n", strings.ReplaceAll(dc.Day, "_", "."), dc.Count))
	}
	b.WriteString("</i>")

	b.WriteString(l.maxConvTime)
	b.WriteString(fmt.Sprintf(l.maxConvBody, res.MaxSessionHours.Short6h, res.MaxSessionHours.Big12h))
	b.WriteString(fmt.Sprintf(l.streak, res.StreakDays))

	return b.String()
}

// formatSeconds renders an optional latency figure, "-" when absent
func formatSeconds(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *seconds)
}
