package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Number is a float64 that tolerates being sent as a JSON string. The device
// service stores consumption values as strings and returns them verbatim.
type Number float64

// UnmarshalJSON accepts a JSON number, a quoted number, or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("api: parse number %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// Timestamp parses the backend's mix of RFC 3339 and naive isoformat()
// strings. Naive timestamps are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON parses a timestamp string; unparseable values yield a zero
// time rather than failing the whole collection.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// User is an account as listed by the user service. AuthID keys the auth
// service record; UserID keys the user service record.
type User struct {
	UserID   int64  `json:"user_id"`
	AuthID   int64  `json:"auth_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Device is a monitored device. A nil UserID means unassigned.
type Device struct {
	DeviceID       int64  `json:"device_id"`
	UserID         *int64 `json:"user_id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	MaxConsumption Number `json:"maxConsumption"`
}

// Sample is one raw consumption reading.
type Sample struct {
	DeviceID    int64     `json:"device_id"`
	AuthID      int64     `json:"auth_id"`
	Consumption Number    `json:"consumption"`
	Timestamp   Timestamp `json:"timestamp"`
}

// Admin is an administrator with presence status, for the chat widget's
// admin picker.
type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsOnline bool   `json:"is_online"`
}

// ChatSession is a client-admin support conversation.
type ChatSession struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	AdminID      string    `json:"admin_id"`
	CreatedAt    Timestamp `json:"created_at"`
	LastActivity Timestamp `json:"last_activity"`
}

// Message types as stored by the messages service.
const (
	MessageTypeUser         = "user"
	MessageTypeAuto         = "auto"
	MessageTypeAI           = "ai"
	MessageTypeNotification = "notification"
)

// ChatMessage is one message in a chat session. Realtime echoes omit
// receiver_id and is_read; only the history endpoint fills every field.
type ChatMessage struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	ReceiverID  string    `json:"receiver_id"`
	Content     string    `json:"content"`
	Timestamp   Timestamp `json:"timestamp"`
	IsRead      bool      `json:"is_read"`
	MessageType string    `json:"message_type"`
}
