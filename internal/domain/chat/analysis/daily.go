package analysis

import (
	"sort"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// DailyBuckets counts messages per calendar day. It remembers the order in
// which days were first seen so that equal-count ranking stays deterministic.
type DailyBuckets struct {
	counts map[string]int
	order  []string
}

// NewDailyBuckets creates an empty set of daily buckets
func NewDailyBuckets() *DailyBuckets {
	return &DailyBuckets{counts: make(map[string]int)}
}

// Add increments the bucket for the given day key
func (b *DailyBuckets) Add(day string) {
	if _, ok := b.counts[day]; !ok {
		b.order = append(b.order, day)
	}
	b.counts[day]++
}

// Count returns the message count recorded for a day
func (b *DailyBuckets) Count(day string) int {
	return b.counts[day]
}

// Len returns the number of distinct active days
func (b *DailyBuckets) Len() int {
	return len(b.order)
}

// DailyCounts buckets messages by calendar day in a single pass
func DailyCounts(messages []entity.Message) *DailyBuckets {
	buckets := NewDailyBuckets()
	for _, msg := range messages {
		buckets.Add(msg.Timestamp.Format(DayKeyFormat))
	}
	return buckets
}

// RankDays returns up to n (day, count) pairs ordered by count, descending by
// default or ascending when asked. Ties keep first-seen day order. Asking for
// more days than exist returns all of them.
func RankDays(buckets *DailyBuckets, n int, ascending bool) []DayCount {
	ranked := make([]DayCount, 0, buckets.Len())
	for _, day := range buckets.order {
		ranked = append(ranked, DayCount{Day: day, Count: buckets.counts[day]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return ranked[i].Count < ranked[j].Count
		}
		return ranked[i].Count > ranked[j].Count
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
