package chat

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Message is a single display-ready chat message. Messages are immutable once
// created; the session log is append-only and insertion order is display
// order for locally created messages.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsRight   bool   `json:"is_right"`
	Timestamp string `json:"timestamp"`
}

// RoleUser marks messages originated by the local user; history entries with
// this role render right-aligned.
const RoleUser = "user"

// AudioPlaceholder is the display text for a submission that carried audio
// but no typed text.
const AudioPlaceholder = "[Audio message]"

// NewUserMessage creates a right-aligned message stamped with the current
// local time.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsRight:   true,
		Timestamp: time.Now().Format("15:04"),
	}
}

// NewAssistantMessage creates a left-aligned message stamped with the current
// local time.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsRight:   false,
		Timestamp: time.Now().Format("15:04"),
	}
}

// HistoryEntry is one raw message record as returned by the webhook's history
// endpoint. Content is carried in one of several fields depending on the
// server version.
type HistoryEntry struct {
	ID        any             `json:"id"`
	UserID    string          `json:"user_id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Text      string          `json:"text"`
	Message   string          `json:"message"`
	MetaData  json.RawMessage `json:"meta_data"`
	CreatedAt string          `json:"created_at"`
}

// text returns the entry's display text, trying the known content fields in
// order.
func (e HistoryEntry) text() string {
	if e.Content != "" {
		return e.Content
	}
	if e.Text != "" {
		return e.Text
	}
	return e.Message
}

// id returns a stable string identifier for the entry, generating one when
// the server did not provide any.
func (e HistoryEntry) id() string {
	switch v := e.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return uuid.NewString()
}
