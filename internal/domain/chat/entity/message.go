package entity

import "time"

// MessageType represents the type of chat message
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypePhoto    MessageType = "photo"
	MessageTypeVideo    MessageType = "video"
	MessageTypeVoice    MessageType = "voice"
	MessageTypeSticker  MessageType = "sticker"
	MessageTypeDocument MessageType = "document"
	MessageTypeOther    MessageType = "other"
)

// Message represents a single message of a two-party chat. Text holds plain
// message text, Caption the caption of a media message; at most one of the
// two is set by the upstream.
type Message struct {
	ID        int64       `json:"id"`
	ChatID    string      `json:"chat_id"`
	SenderID  string      `json:"sender_id"`
	Type      MessageType `json:"type"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	CreatedAt time.Time   `json:"created_at"`
}

// Content returns the textual payload of the message: the text if present,
// otherwise the media caption.
func (m Message) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// HasContent reports whether the message carries text or a caption.
func (m Message) HasContent() bool {
	return m.Text != "" || m.Caption != ""
}

// User represents a chat participant as resolved from the upstream
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human-readable name for the user
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}
