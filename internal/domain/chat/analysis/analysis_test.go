package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

func TestAnalyzeFullScenario(t *testing.T) {
	base := day(1) // 2025-03-01 12:00 UTC
	msgs := []entity.Message{
		// Delivered newest-first, as retrieval does
		textMsg("alice", day(2).Add(time.Hour), "see you"),
		textMsg("bob", day(2), "sure thing"),
		textMsg("alice", base.Add(10*time.Minute), "how are you"),
		textMsg("bob", base.Add(5*time.Minute), "hey"),
		textMsg("alice", base, "hi"),
	}

	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if res.TotalMessages != 5 {
		t.Errorf("TotalMessages = %d, want 5", res.TotalMessages)
	}

	// alice has 3 messages, bob 2: alice is user A by volume
	if res.UserA.UserID != "alice" || res.UserB.UserID != "bob" {
		t.Fatalf("participants = %s/%s, want alice/bob", res.UserA.UserID, res.UserB.UserID)
	}
	if res.UserA.Messages != 3 || res.UserB.Messages != 2 {
		t.Errorf("counts = %d/%d, want 3/2", res.UserA.Messages, res.UserB.Messages)
	}
	if res.UserA.Messages+res.UserB.Messages != res.TotalMessages {
		t.Errorf("per-sender counts do not sum to total")
	}

	if !closeTo(res.UserA.CountRatio, 1.5) || !closeTo(res.UserB.CountRatio, 2.0/3.0) {
		t.Errorf("count ratios = %v/%v", res.UserA.CountRatio, res.UserB.CountRatio)
	}
	if !closeTo(res.UserA.MessageShare+res.UserB.MessageShare, 1) {
		t.Errorf("shares sum to %v, want 1", res.UserA.MessageShare+res.UserB.MessageShare)
	}

	// alice opened both conversations (first message, and the >4h gap
	// before day 2 restarts with bob... the day-2 opener is bob)
	if res.UserA.StartShare+res.UserB.StartShare > 1+1e-9 {
		t.Errorf("start shares exceed 1: %v + %v", res.UserA.StartShare, res.UserB.StartShare)
	}

	if res.StreakDays != 2 {
		t.Errorf("StreakDays = %d, want 2", res.StreakDays)
	}

	if res.MaxSessionHours.Short6h > res.MaxSessionHours.Big12h+1e-9 {
		t.Errorf("6h figure %v exceeds 12h figure %v", res.MaxSessionHours.Short6h, res.MaxSessionHours.Big12h)
	}

	if len(res.BusiestDays) != 2 || res.BusiestDays[0].Day != "01_03_2025" {
		t.Errorf("BusiestDays = %+v, want 01_03_2025 first", res.BusiestDays)
	}
	if len(res.QuietestDays) != 2 || res.QuietestDays[0].Day != "02_03_2025" {
		t.Errorf("QuietestDays = %+v, want 02_03_2025 first", res.QuietestDays)
	}

	if res.UserB.AvgResponseSeconds == nil {
		t.Fatal("bob has replies, AvgResponseSeconds must be set")
	}

	if res.UserA.AvgTextLength <= 0 {
		t.Errorf("AvgTextLength = %v, want positive", res.UserA.AvgTextLength)
	}
}

func TestAnalyzeInsufficientData(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		_, err := Analyze(nil)
		if !errors.Is(err, entity.ErrInsufficientData) {
			t.Errorf("err = %v, want ErrInsufficientData", err)
		}
	})

	t.Run("single sender", func(t *testing.T) {
		msgs := []entity.Message{
			textMsg("a", day(1), "one"),
			textMsg("a", day(2), "two"),
			textMsg("a", day(3), "three"),
		}
		_, err := Analyze(msgs)
		if !errors.Is(err, entity.ErrInsufficientData) {
			t.Errorf("err = %v, want ErrInsufficientData", err)
		}
	})
}

func TestAnalyzePicksTwoHighestVolumeSenders(t *testing.T) {
	base := day(1)
	var msgs []entity.Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, textMsg("big", base.Add(time.Duration(i)*time.Minute), "x"))
	}
	for i := 0; i < 3; i++ {
		msgs = append(msgs, textMsg("mid", base.Add(time.Duration(10+i)*time.Minute), "x"))
	}
	msgs = append(msgs, textMsg("small", base.Add(20*time.Minute), "x"))

	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.UserA.UserID != "big" || res.UserB.UserID != "mid" {
		t.Errorf("participants = %s/%s, want big/mid", res.UserA.UserID, res.UserB.UserID)
	}
	// The third sender still shows up in the raw counts
	if res.MessageCounts["small"] != 1 {
		t.Errorf("MessageCounts[small] = %d, want 1", res.MessageCounts["small"])
	}
	if res.TotalMessages != 9 {
		t.Errorf("TotalMessages = %d, want 9", res.TotalMessages)
	}
}

func TestAnalyzeVolumeTieBreaksByFirstAppearance(t *testing.T) {
	base := day(1)
	msgs := []entity.Message{
		textMsg("second", base.Add(time.Minute), "x"),
		textMsg("first", base, "x"),
		textMsg("third", base.Add(2*time.Minute), "x"),
	}
	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.UserA.UserID != "first" || res.UserB.UserID != "second" {
		t.Errorf("participants = %s/%s, want first/second (chronological tie-break)", res.UserA.UserID, res.UserB.UserID)
	}
}

func TestAnalyzeAvgTextLengthIgnoresNonText(t *testing.T) {
	base := day(1)
	msgs := []entity.Message{
		textMsg("a", base, "привет"), // 6 runes
		{SenderID: "a", Type: entity.MessageTypeSticker, Timestamp: base.Add(time.Minute)},
		textMsg("b", base.Add(2*time.Minute), "hey"),
	}
	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !closeTo(res.UserA.AvgTextLength, 6) {
		t.Errorf("AvgTextLength = %v, want 6 (stickers excluded, runes counted)", res.UserA.AvgTextLength)
	}
}

func TestAnalyzeNoTextSenderHasZeroAvgLength(t *testing.T) {
	base := day(1)
	msgs := []entity.Message{
		textMsg("a", base, "hello"),
		{SenderID: "b", Type: entity.MessageTypeSticker, Timestamp: base.Add(time.Minute)},
		{SenderID: "b", Type: entity.MessageTypeVoice, Timestamp: base.Add(2 * time.Minute)},
	}
	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if res.UserA.UserID != "b" && res.UserB.UserID != "b" {
		t.Fatal("b must be one of the analyzed participants")
	}
	for _, u := range []UserSummary{res.UserA, res.UserB} {
		if u.UserID == "b" && u.AvgTextLength != 0 {
			t.Errorf("AvgTextLength for textless sender = %v, want 0", u.AvgTextLength)
		}
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	base := day(1)
	msgs := []entity.Message{
		textMsg("a", base.Add(time.Hour), "later"),
		textMsg("b", base, "earlier"),
	}
	if _, err := Analyze(msgs); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if msgs[0].Text != "later" || !msgs[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Error("input batch was reordered")
	}
}

func TestAnalyzeStartShareDenominatorFloor(t *testing.T) {
	// Start shares never produce NaN even in degenerate setups
	base := day(1)
	msgs := []entity.Message{
		textMsg("a", base, "x"),
		textMsg("b", base.Add(time.Minute), "y"),
	}
	res, err := Analyze(msgs)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if math.IsNaN(res.UserA.StartShare) || math.IsNaN(res.UserB.StartShare) {
		t.Error("start share is NaN")
	}
}
