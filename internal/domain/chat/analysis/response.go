package analysis

import (
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

// initiationGap is the silence after which a message from the other party
// counts as starting a new conversation rather than answering the last one.
const initiationGap = 4 * time.Hour

// ConversationFlow walks the chat chronologically and reports, per sender,
// how many conversations they initiated, and, per directed pair, the reply
// latency samples in seconds.
//
// The first message of the batch is always an initiation. A sender switch
// after more than the initiation gap is an initiation; a switch within the
// gap where both sides carry text records a latency sample. The sample is
// measured against the reply baseline: when the previous messages form a
// same-sender run, the latency counts from the message before the run's last
// one, otherwise from the immediately preceding message. Consecutive messages
// by one sender produce no events of their own.
func ConversationFlow(messages []entity.Message) (map[string]int, map[PairKey][]float64) {
	starts := make(map[string]int)
	responses := make(map[PairKey][]float64)

	msgs := sortedByTime(messages)

	var (
		lastTime    time.Time
		lastSender  string
		lastHasText bool
		haveLast    bool

		// Baseline within a same-sender run: the timestamp preceding the
		// run's last message, valid only while haveRun is set.
		runBaseline time.Time
		haveRun     bool
	)

	for _, msg := range msgs {
		sender := msg.SenderID

		switch {
		case !haveLast:
			starts[sender]++
		case sender != lastSender:
			if msg.Timestamp.Sub(lastTime) > initiationGap {
				starts[sender]++
			} else if msg.HasContent() && lastHasText {
				baseline := lastTime
				if haveRun {
					baseline = runBaseline
				}
				key := PairKey{Responder: sender, Sender: lastSender}
				responses[key] = append(responses[key], msg.Timestamp.Sub(baseline).Seconds())
			}
		}

		if haveLast && sender == lastSender {
			runBaseline = lastTime
			haveRun = true
		} else {
			haveRun = false
		}

		lastSender = sender
		lastTime = msg.Timestamp
		lastHasText = msg.HasContent()
		haveLast = true
	}

	return starts, responses
}
