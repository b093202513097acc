package analysis

// DayKeyFormat is the calendar-day key layout used for daily buckets ("DD_MM_YYYY")
const DayKeyFormat = "02_01_2006"

// Session gap thresholds in hours. Both segmentations are always computed.
const (
	ShortSessionGapHours = 6
	BigSessionGapHours   = 12
)

// DefaultTopDays is how many busiest/quietest days a report carries
const DefaultTopDays = 5

// DayCount pairs a calendar-day key with the number of messages sent that day
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// PairKey identifies a directed responder/original-sender pair. Latencies for
// A answering B and for B answering A are tracked independently.
type PairKey struct {
	Responder string
	Sender    string
}

// UserSummary holds the per-participant slice of an analysis result
type UserSummary struct {
	UserID   string `json:"user_id"`
	Messages int    `json:"messages"`

	// CountRatio is this participant's message count divided by the other's
	CountRatio float64 `json:"count_ratio"`
	// MessageShare is this participant's share of the total message count
	MessageShare float64 `json:"message_share"`
	// StartShare is the share of conversations this participant initiated
	StartShare float64 `json:"start_share"`

	// AvgResponseSeconds is the mean reply latency of this participant,
	// nil when no reply of theirs was ever observed
	AvgResponseSeconds *float64 `json:"avg_response_seconds,omitempty"`

	// AvgTextLength is the mean rune length of this participant's text
	// messages, 0 when they never sent text
	AvgTextLength float64 `json:"avg_text_length"`
}

// SessionDurations carries the longest-session figure for both gap thresholds
type SessionDurations struct {
	Short6h float64 `json:"short_6h"`
	Big12h  float64 `json:"big_12h"`
}

// Result is the full output of one analysis run over a chat history batch
type Result struct {
	TotalMessages int `json:"total_messages"`

	UserA UserSummary `json:"user_a"`
	UserB UserSummary `json:"user_b"`

	// MessageCounts keeps raw counts for every sender seen in the batch,
	// including any beyond the two analyzed participants
	MessageCounts map[string]int `json:"message_counts"`

	MaxSessionHours SessionDurations `json:"max_session_hours"`
	StreakDays      int              `json:"streak_days"`

	BusiestDays  []DayCount `json:"busiest_days"`
	QuietestDays []DayCount `json:"quietest_days"`
}
