// Package chat drives the support-chat workflows: the end-user widget that
// talks to a chosen administrator or the AI assistant, and the administrator
// console that serves active sessions.
package chat

import "github.com/Simi445/DMS-K8S/internal/api"

// Channel event names, outbound.
const (
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventMarkRead    = "mark_read"
)

// Channel event names, inbound.
const (
	EventNewMessage    = "new_message"
	EventUserJoined    = "user_joined"
	EventUserLeft      = "user_left"
	EventTypingStarted = "typing_started"
	EventTypingStopped = "typing_stopped"
	EventMessagesRead  = "messages_read"
	EventError         = "error"
)

// MessageTypeError marks a locally rendered failure line. It never goes
// over the wire; the server's own types live in api.MessageType*.
const MessageTypeError = "error"

type joinPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	UserType  string `json:"user_type"`
}

type leavePayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type sendPayload struct {
	SessionID  string `json:"session_id"`
	SenderID   string `json:"sender_id"`
	Content    string `json:"content"`
	SenderType string `json:"sender_type"`
}

type typingPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type markReadPayload struct {
	MessageIDs []string `json:"message_ids"`
	UserID     string   `json:"user_id"`
}

type newMessageEvent struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"sender_id"`
	Content     string        `json:"content"`
	Timestamp   api.Timestamp `json:"timestamp"`
	MessageType string        `json:"message_type"`
}

type presenceEvent struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
}

type typingEvent struct {
	UserID string `json:"user_id"`
}

type messagesReadEvent struct {
	MessageIDs []string `json:"message_ids"`
}
