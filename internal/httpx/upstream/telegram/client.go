// Package telegram is a minimal Bot API style client for the chat gateway:
// paginated history retrieval, message delivery and identity resolution.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vadim/chat-pulse/internal/domain/chat/entity"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 30 * time.Second

	// parseModeHTML is the only parse mode reports are delivered with
	parseModeHTML = "HTML"
)

// Client talks to the Telegram gateway for one bot token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new gateway client
func New(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error envelope from the gateway
type APIError struct {
	Code        int    `json:"error_code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s (code: %d)", e.Description, e.Code)
}

// envelope is the standard {ok, result|description} response wrapper
type envelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// APIUser is a chat participant as the gateway reports it
type APIUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// APIChat identifies the chat an update belongs to
type APIChat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// UpdateMessage is the message payload of a webhook update
type UpdateMessage struct {
	MessageID int64    `json:"message_id"`
	From      *APIUser `json:"from,omitempty"`
	Chat      APIChat  `json:"chat"`
	Date      int64    `json:"date"`
	Text      string   `json:"text,omitempty"`
}

// Update is one webhook delivery
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *UpdateMessage `json:"message,omitempty"`
}

// historyMessage is the raw wire form of one history entry. Media fields are
// kept opaque; only their presence matters for classification.
type historyMessage struct {
	MessageID int64    `json:"message_id"`
	From      *APIUser `json:"from,omitempty"`
	Date      int64    `json:"date"`
	Text      string   `json:"text,omitempty"`
	Caption   string   `json:"caption,omitempty"`

	Photo    json.RawMessage `json:"photo,omitempty"`
	Video    json.RawMessage `json:"video,omitempty"`
	Voice    json.RawMessage `json:"voice,omitempty"`
	Sticker  json.RawMessage `json:"sticker,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

func (m historyMessage) messageType() entity.MessageType {
	switch {
	case m.Text != "":
		return entity.MessageTypeText
	case m.Photo != nil:
		return entity.MessageTypePhoto
	case m.Video != nil:
		return entity.MessageTypeVideo
	case m.Voice != nil:
		return entity.MessageTypeVoice
	case m.Sticker != nil:
		return entity.MessageTypeSticker
	case m.Document != nil:
		return entity.MessageTypeDocument
	}
	return entity.MessageTypeOther
}

// HistoryPage is one page of chat history, newest first
type HistoryPage struct {
	Messages     []entity.Message
	NextOffsetID int64
	HasMore      bool
}

// GetChatHistory retrieves one page of a chat's history, newest first.
// offsetID of 0 starts from the most recent message; subsequent pages pass
// the NextOffsetID of the previous one.
func (c *Client) GetChatHistory(ctx context.Context, chatID string, limit int, offsetID int64) (*HistoryPage, error) {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("limit", strconv.Itoa(limit))
	if offsetID > 0 {
		params.Set("offset_id", strconv.FormatInt(offsetID, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getChatHistory")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var raw []historyMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}

	page := &HistoryPage{HasMore: len(raw) == limit}
	for _, hm := range raw {
		if hm.From == nil {
			// Service messages carry no sender and are out of scope
			continue
		}
		page.Messages = append(page.Messages, entity.Message{
			ID:        hm.MessageID,
			ChatID:    chatID,
			SenderID:  strconv.FormatInt(hm.From.ID, 10),
			Type:      hm.messageType(),
			Text:      hm.Text,
			Caption:   hm.Caption,
			Timestamp: time.Unix(hm.Date, 0).UTC(),
		})
		page.NextOffsetID = hm.MessageID
	}

	return page, nil
}

// SentMessage is the delivery acknowledgement for a posted message
type SentMessage struct {
	MessageID int64 `json:"message_id"`
}

// SendMessage posts an HTML-formatted message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*SentMessage, error) {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", text)
	params.Set("parse_mode", parseModeHTML)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out SentMessage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// EditMessageText replaces the text of a previously sent message
func (c *Client) EditMessageText(ctx context.Context, chatID string, messageID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("message_id", strconv.FormatInt(messageID, 10))
	params.Set("text", text)
	params.Set("parse_mode", parseModeHTML)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("editMessageText")+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return c.do(req, nil)
}

// DeleteMessage removes a message from a chat
func (c *Client) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("message_id", strconv.FormatInt(messageID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("deleteMessage")+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return c.do(req, nil)
}

// GetChat resolves a private chat id to its participant's identity
func (c *Client) GetChat(ctx context.Context, chatID string) (*entity.User, error) {
	params := url.Values{}
	params.Set("chat_id", chatID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getChat")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var raw APIChat
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}

	return &entity.User{
		ID:        strconv.FormatInt(raw.ID, 10),
		Username:  raw.Username,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
	}, nil
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// do executes an HTTP request and decodes the response envelope
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	if !env.OK {
		return &APIError{Code: env.ErrorCode, Description: env.Description}
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
