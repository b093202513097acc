package analysis

import (
	"sort"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// sortedByTime returns a chronologically sorted copy of the batch. The sort
// is stable so that messages sharing a timestamp keep their arrival order.
func sortedByTime(messages []entity.Message) []entity.Message {
	msgs := make([]entity.Message, len(messages))
	copy(msgs, messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}

// MaxSessionDuration partitions the chat into sessions, closing a session
// whenever the gap between adjacent messages exceeds maxGapHours, and returns
// the longest session duration in hours. An empty batch yields 0, and so does
// a batch whose sessions all contain a single message.
func MaxSessionDuration(messages []entity.Message, maxGapHours int) float64 {
	if len(messages) == 0 {
		return 0
	}

	msgs := sortedByTime(messages)
	maxGap := time.Duration(maxGapHours) * time.Hour

	var maxDuration time.Duration
	currentStart := msgs[0].Timestamp
	lastTime := msgs[0].Timestamp

	for _, msg := range msgs[1:] {
		if msg.Timestamp.Sub(lastTime) > maxGap {
			// Session closed on the previous message
			if d := lastTime.Sub(currentStart); d > maxDuration {
				maxDuration = d
			}
			currentStart = msg.Timestamp
		}
		lastTime = msg.Timestamp
	}

	if d := lastTime.Sub(currentStart); d > maxDuration {
		maxDuration = d
	}

	return maxDuration.Hours()
}
