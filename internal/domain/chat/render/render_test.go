package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/vadim/chat-pulse/internal/domain/chat/analysis"
	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

func sampleResult() *analysis.Result {
	avg := 321.5
	return &analysis.Result{
		TotalMessages: 42,
		UserA: analysis.UserSummary{
			UserID:             "100",
			Messages:           30,
			CountRatio:         2.5,
			MessageShare:       0.714,
			StartShare:         0.6,
			AvgResponseSeconds: &avg,
			AvgTextLength:      55.2,
		},
		UserB: analysis.UserSummary{
			UserID:       "200",
			Messages:     12,
			CountRatio:   0.4,
			MessageShare: 0.286,
			StartShare:   0.4,
		},
		MessageCounts: map[string]int{"100": 30, "200": 12},
		MaxSessionHours: analysis.SessionDurations{
			Short6h: 3.25,
			Big12h:  8.75,
		},
		StreakDays: 7,
		BusiestDays: []analysis.DayCount{
			{Day: "01_03_2025", Count: 20},
			{Day: "02_03_2025", Count: 15},
		},
		QuietestDays: []analysis.DayCount{
			{Day: "05_03_2025", Count: 1},
			{Day: "04_03_2025", Count: 6},
		},
	}
}

func TestParseLocale(t *testing.T) {
	for _, ok := range []string{"en", "ru"} {
		if _, err := ParseLocale(ok); err != nil {
			t.Errorf("ParseLocale(%q) error: %v", ok, err)
		}
	}
	if _, err := ParseLocale("de"); !errors.Is(err, entity.ErrUnknownLocale) {
		t.Errorf("ParseLocale(de) = %v, want ErrUnknownLocale", err)
	}
}

func TestReportEnglish(t *testing.T) {
	names := map[string]string{"100": "Alice", "200": "Bob"}
	out := Report(sampleResult(), names, LocaleEN)

	for _, want := range []string{
		"<b>Chat Stats:</b>",
		"<b>Total Messages:</b> 42",
		"<b>Alice:</b> 30 messages, reply ratio: 2.50, msgs ratio: 0.71",
		"<b>Bob:</b> 12 messages",
		"<b>Started first:</b>",
		"av. answer time: 321.50",
		"av. answer time: -", // Bob never replied
		"<b>Av. text size:</b>",
		"01.03.2025 - 20",
		"...",
		"05.03.2025 - 1",
		"Detailed: 3.25h.",
		"Brief: 8.75h.",
		"<i>7 days</i>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\nreport:\n%s", want, out)
		}
	}

	// Quietest days render in reverse so the block ends on the quietest day
	if strings.Index(out, "04.03.2025") > strings.Index(out, "05.03.2025") {
		t.Error("quietest days not reversed")
	}
}

func TestReportRussian(t *testing.T) {
	out := Report(sampleResult(), nil, LocaleRU)

	for _, want := range []string{
		"<b>Статистика чата:</b>",
		"<b>Всего сообщений:</b> 42",
		"Подробное: 3.25ч.",
		"Краткое: 8.75ч.",
		"<i>7 дней</i>",
		// No names supplied: raw ids shown
		"<b>100:</b>",
		"<b>200:</b>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestPlaceholderAndNotice(t *testing.T) {
	if Placeholder(LocaleEN) == "" || Placeholder(LocaleRU) == "" {
		t.Error("empty placeholder")
	}
	if InsufficientData(LocaleEN) == "" || InsufficientData(LocaleRU) == "" {
		t.Error("empty insufficient-data notice")
	}
}
