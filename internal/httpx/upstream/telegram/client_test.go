package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-token", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestGetChatHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/getChatHistory" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("chat_id") != "777" || q.Get("limit") != "2" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"ok":true,"result":[
			{"message_id":10,"from":{"id":1,"first_name":"Alice"},"date":1740000600,"text":"newest"},
			{"message_id":9,"from":{"id":2,"first_name":"Bob"},"date":1740000000,"caption":"pic","photo":[{"file_id":"x"}]}
		]}`)
	})

	page, err := client.GetChatHistory(context.Background(), "777", 2, 0)
	if err != nil {
		t.Fatalf("GetChatHistory() error: %v", err)
	}

	if len(page.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(page.Messages))
	}
	if !page.HasMore {
		t.Error("full page must report HasMore")
	}
	if page.NextOffsetID != 9 {
		t.Errorf("NextOffsetID = %d, want 9", page.NextOffsetID)
	}

	first := page.Messages[0]
	if first.SenderID != "1" || first.Type != entity.MessageTypeText || first.Text != "newest" {
		t.Errorf("first message = %+v", first)
	}
	second := page.Messages[1]
	if second.Type != entity.MessageTypePhoto || second.Caption != "pic" {
		t.Errorf("second message = %+v", second)
	}
	if !second.HasContent() {
		t.Error("captioned photo must count as textual content")
	}
}

func TestGetChatHistorySkipsServiceMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[
			{"message_id":5,"date":1740000000,"text":"chat created"},
			{"message_id":4,"from":{"id":1,"first_name":"Alice"},"date":1739999000,"text":"hi"}
		]}`)
	})

	page, err := client.GetChatHistory(context.Background(), "777", 50, 0)
	if err != nil {
		t.Fatalf("GetChatHistory() error: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].SenderID != "1" {
		t.Errorf("messages = %+v, want only the sender-carrying one", page.Messages)
	}
	if page.HasMore {
		t.Error("short page must not report HasMore")
	}
}

func TestSendAndEditMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottest-token/sendMessage":
			if r.URL.Query().Get("parse_mode") != "HTML" {
				t.Error("sendMessage must use HTML parse mode")
			}
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":55}}`)
		case "/bottest-token/editMessageText":
			if r.URL.Query().Get("message_id") != "55" {
				t.Errorf("message_id = %s", r.URL.Query().Get("message_id"))
			}
			fmt.Fprint(w, `{"ok":true,"result":true}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	sent, err := client.SendMessage(context.Background(), "777", "<b>hi</b>")
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if sent.MessageID != 55 {
		t.Errorf("MessageID = %d, want 55", sent.MessageID)
	}

	if err := client.EditMessageText(context.Background(), "777", sent.MessageID, "<b>done</b>"); err != nil {
		t.Fatalf("EditMessageText() error: %v", err)
	}
}

func TestGetChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":42,"type":"private","first_name":"Alice","username":"alice42"}}`)
	})

	user, err := client.GetChat(context.Background(), "42")
	if err != nil {
		t.Fatalf("GetChat() error: %v", err)
	}
	if user.ID != "42" || user.DisplayName() != "Alice" {
		t.Errorf("user = %+v", user)
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	})

	_, err := client.GetChatHistory(context.Background(), "nope", 10, 0)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != 400 {
		t.Errorf("Code = %d, want 400", apiErr.Code)
	}
}
