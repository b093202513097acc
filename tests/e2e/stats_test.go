package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
)

const (
	baseURL    = "http://localhost:8080"
	apiURL     = baseURL + "/api/v1"
	chatID     = "42"
	ownerID    = "100"
	strangerID = "999"
)

type UserSummary struct {
	UserID             string   `json:"user_id"`
	Messages           int      `json:"messages"`
	CountRatio         float64  `json:"count_ratio"`
	MessageShare       float64  `json:"message_share"`
	StartShare         float64  `json:"start_share"`
	AvgResponseSeconds *float64 `json:"avg_response_seconds,omitempty"`
	AvgTextLength      float64  `json:"avg_text_length"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type StatisticsResponse struct {
	TotalMessages int            `json:"total_messages"`
	UserA         UserSummary    `json:"user_a"`
	UserB         UserSummary    `json:"user_b"`
	MessageCounts map[string]int `json:"message_counts"`
	MaxSessionHours struct {
		Short6h float64 `json:"short_6h"`
		Big12h  float64 `json:"big_12h"`
	} `json:"max_session_hours"`
	StreakDays   int        `json:"streak_days"`
	BusiestDays  []DayCount `json:"busiest_days"`
	QuietestDays []DayCount `json:"quietest_days"`
}

type ExportResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// TestStatistics tests GET /chats/{chatId}/statistics
func TestStatistics(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	t.Run("owner gets statistics", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/chats/%s/statistics?user_id=%s", apiURL, chatID, ownerID))
		if err != nil {
			t.Fatalf("Failed to get statistics: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(respBody))
		}

		var stats StatisticsResponse
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if stats.TotalMessages == 0 {
			t.Error("Expected non-zero total messages")
		}
		if stats.UserA.UserID == "" || stats.UserB.UserID == "" {
			t.Error("Expected both participants to be identified")
		}
		if len(stats.BusiestDays) == 0 {
			t.Error("Expected busiest days to be populated")
		}

		t.Logf("Statistics: total=%d, userA=%s (%d), userB=%s (%d), streak=%d",
			stats.TotalMessages,
			stats.UserA.UserID, stats.UserA.Messages,
			stats.UserB.UserID, stats.UserB.Messages,
			stats.StreakDays)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/chats/%s/statistics?user_id=%s", apiURL, chatID, strangerID))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", resp.StatusCode)
		}
	})

	t.Run("missing user_id gets 400", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/chats/%s/statistics", apiURL, chatID))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})
}

// TestReport tests POST /chats/{chatId}/report
func TestReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	t.Run("owner delivers report", func(t *testing.T) {
		resp, err := http.Post(fmt.Sprintf("%s/chats/%s/report?user_id=%s", apiURL, chatID, ownerID), "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to publish report: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 202, got %d: %s", resp.StatusCode, string(respBody))
		}

		t.Logf("Report delivered for chat %s", chatID)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		resp, err := http.Post(fmt.Sprintf("%s/chats/%s/report?user_id=%s", apiURL, chatID, strangerID), "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", resp.StatusCode)
		}
	})
}

// TestSync tests POST /chats/{chatId}/sync
func TestSync(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	t.Run("owner forces re-sync", func(t *testing.T) {
		resp, err := http.Post(fmt.Sprintf("%s/chats/%s/sync?user_id=%s", apiURL, chatID, ownerID), "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to sync: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 204, got %d: %s", resp.StatusCode, string(respBody))
		}

		t.Logf("Synced chat %s", chatID)
	})
}

// TestExport tests POST /chats/{chatId}/export
func TestExport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	t.Run("owner archives history", func(t *testing.T) {
		resp, err := http.Post(fmt.Sprintf("%s/chats/%s/export?user_id=%s", apiURL, chatID, ownerID), "application/json", nil)
		if err != nil {
			t.Fatalf("Failed to export: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(respBody))
		}

		var export ExportResponse
		if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if export.Key == "" {
			t.Error("Expected export key to be set")
		}
		if export.Size == 0 {
			t.Error("Expected non-zero export size")
		}

		t.Logf("Exported chat %s: key=%s, size=%d", chatID, export.Key, export.Size)
	})
}

// TestWebhook tests POST /telegram/webhook
func TestWebhook(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	t.Run("stats command from owner", func(t *testing.T) {
		update := fmt.Sprintf(`{
			"update_id": 1,
			"message": {
				"message_id": 1000,
				"from": {"id": %s, "first_name": "Owner"},
				"chat": {"id": %s, "type": "private"},
				"date": 1717230000,
				"text": "/stats"
			}
		}`, ownerID, chatID)

		resp, err := http.Post(baseURL+"/telegram/webhook", "application/json", bytes.NewReader([]byte(update)))
		if err != nil {
			t.Fatalf("Failed to deliver update: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(respBody))
		}

		t.Logf("Webhook processed stats command")
	})

	t.Run("plain message is acknowledged", func(t *testing.T) {
		update := fmt.Sprintf(`{
			"update_id": 2,
			"message": {
				"message_id": 1001,
				"from": {"id": %s, "first_name": "Owner"},
				"chat": {"id": %s, "type": "private"},
				"date": 1717230000,
				"text": "hello"
			}
		}`, ownerID, chatID)

		resp, err := http.Post(baseURL+"/telegram/webhook", "application/json", bytes.NewReader([]byte(update)))
		if err != nil {
			t.Fatalf("Failed to deliver update: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})
}

// TestHealth tests the health endpoints
func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(baseURL + path)
		if err != nil {
			t.Fatalf("Failed to get %s: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, resp.StatusCode)
		}
	}
}
