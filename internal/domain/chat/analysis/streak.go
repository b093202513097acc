package analysis

import (
	"sort"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// Streak returns the number of consecutive active calendar days ending at the
// most recent active day. A day is active when at least one message was sent
// on it. The streak is a property of the batch alone: a quiet "today" does
// not reset it. An empty batch yields 0.
func Streak(messages []entity.Message) int {
	if len(messages) == 0 {
		return 0
	}

	seen := make(map[time.Time]struct{})
	for _, msg := range messages {
		y, m, d := msg.Timestamp.Date()
		seen[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	// Most recent first
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	streak := 1
	for i := 0; i+1 < len(dates); i++ {
		if !dates[i+1].Equal(dates[i].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak
}
