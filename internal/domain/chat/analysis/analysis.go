// Package analysis implements the conversation analytics engine: pure,
// side-effect-free computation turning an ordered batch of chat messages
// into activity, session, streak and response-time statistics for the two
// main participants.
package analysis

import (
	"sort"
	"unicode/utf8"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// Analyze runs the full pipeline over one chat history batch. The batch may
// arrive in any order (retrieval usually delivers newest-first); Analyze
// works on a chronologically sorted copy and never mutates its input.
//
// It returns entity.ErrInsufficientData when fewer than two distinct senders
// appear, or when one of the two analyzed participants has no messages.
func Analyze(messages []entity.Message) (*Result, error) {
	msgs := sortedByTime(messages)

	counts := make(map[string]int)
	textTotal := make(map[string]int)
	textMessages := make(map[string]int)
	var senderOrder []string

	buckets := NewDailyBuckets()
	for _, msg := range msgs {
		if _, ok := counts[msg.SenderID]; !ok {
			senderOrder = append(senderOrder, msg.SenderID)
		}
		counts[msg.SenderID]++

		buckets.Add(msg.Timestamp.Format(DayKeyFormat))

		if content := msg.Content(); content != "" {
			textTotal[msg.SenderID] += utf8.RuneCountInString(content)
			textMessages[msg.SenderID]++
		}
	}

	if len(counts) < 2 {
		return nil, entity.ErrInsufficientData
	}

	userA, userB := selectParticipants(counts, senderOrder)
	countA, countB := counts[userA], counts[userB]
	// Unreachable once the two-sender precondition holds, still checked
	if countA == 0 || countB == 0 {
		return nil, entity.ErrInsufficientData
	}

	starts, responses := ConversationFlow(msgs)
	startA, startB := starts[userA], starts[userB]
	totalStarts := startA + startB
	if totalStarts == 0 {
		totalStarts = 1
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	result := &Result{
		TotalMessages: total,
		MessageCounts: counts,
		UserA: UserSummary{
			UserID:             userA,
			Messages:           countA,
			CountRatio:         ratio(countA, countB),
			MessageShare:       share(countA, countA+countB),
			StartShare:         share(startA, totalStarts),
			AvgResponseSeconds: meanSeconds(responses[PairKey{Responder: userA, Sender: userB}]),
			AvgTextLength:      mean(textTotal[userA], textMessages[userA]),
		},
		UserB: UserSummary{
			UserID:             userB,
			Messages:           countB,
			CountRatio:         ratio(countB, countA),
			MessageShare:       share(countB, countA+countB),
			StartShare:         share(startB, totalStarts),
			AvgResponseSeconds: meanSeconds(responses[PairKey{Responder: userB, Sender: userA}]),
			AvgTextLength:      mean(textTotal[userB], textMessages[userB]),
		},
		MaxSessionHours: SessionDurations{
			Short6h: MaxSessionDuration(msgs, ShortSessionGapHours),
			Big12h:  MaxSessionDuration(msgs, BigSessionGapHours),
		},
		StreakDays:   Streak(msgs),
		BusiestDays:  RankDays(buckets, DefaultTopDays, false),
		QuietestDays: RankDays(buckets, DefaultTopDays, true),
	}

	return result, nil
}

// selectParticipants picks the two analyzed participants deterministically:
// the two highest-volume senders, ties broken by first chronological
// appearance.
func selectParticipants(counts map[string]int, firstSeen []string) (string, string) {
	ranked := make([]string, len(firstSeen))
	copy(ranked, firstSeen)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked[0], ranked[1]
}

// ratio divides two counts, yielding 0 on a zero denominator
func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// share behaves like ratio but reads better at call sites computing fractions
func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// mean divides a sum by a count, yielding 0 for an empty sample set
func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// meanSeconds averages latency samples, nil when there are none
func meanSeconds(samples []float64) *float64 {
	if len(samples) == 0 {
		return nil
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	avg := sum / float64(len(samples))
	return &avg
}
