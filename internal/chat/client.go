package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

// SessionAPI is the slice of the portal REST surface the chat workflows use.
// *api.Client satisfies it.
type SessionAPI interface {
	CreateChatSession(ctx context.Context, clientID, adminID string) (string, error)
	SessionMessages(ctx context.Context, sessionID string) ([]api.ChatMessage, error)
	ActiveSessions(ctx context.Context) ([]api.ChatSession, error)
	AIChat(ctx context.Context, message, userID string) (string, error)
}

// Recorder archives chat lines locally. Implementations must tolerate being
// called from channel dispatch goroutines.
type Recorder interface {
	RecordMessage(sessionID string, msg api.ChatMessage) error
}

// State is the chat client's position in its lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateAwaitingSession
	StateAIMode
	StateActive
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateAwaitingSession:
		return "awaiting-session"
	case StateAIMode:
		return "ai-mode"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Opts configures a chat client.
type Opts struct {
	API      SessionAPI
	Channel  realtime.Channel
	Recorder Recorder // optional
	SelfID   string
	UserType string // "client" or "admin", defaults to "client"

	// UI hooks, all optional. Invoked from channel dispatch, so implementations
	// must not call back into the client while holding their own locks.
	OnMessage  func(api.ChatMessage)
	OnTyping   func(userID string, active bool)
	OnPresence func(userID, userType string, joined bool)

	Now func() time.Time // test hook
}

// Client is one participant's view of the support chat: a transcript, a
// session room over the realtime channel, and the typing-indicator state.
type Client struct {
	api      SessionAPI
	channel  realtime.Channel
	recorder Recorder
	selfID   string
	userType string
	now      func() time.Time

	onMessage  func(api.ChatMessage)
	onTyping   func(userID string, active bool)
	onPresence func(userID, userType string, joined bool)

	mu         sync.Mutex
	state      State
	sessionID  string
	transcript []api.ChatMessage
	typing     bool
	localSeq   int
	subs       []*realtime.Subscription
}

// NewClient builds a chat client in the disconnected state.
func NewClient(opts Opts) (*Client, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("chat: API is required")
	}
	if opts.Channel == nil {
		return nil, fmt.Errorf("chat: Channel is required")
	}
	if opts.SelfID == "" {
		return nil, fmt.Errorf("chat: SelfID is required")
	}
	userType := opts.UserType
	if userType == "" {
		userType = "client"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		api:        opts.API,
		channel:    opts.Channel,
		recorder:   opts.Recorder,
		selfID:     opts.SelfID,
		userType:   userType,
		now:        now,
		onMessage:  opts.OnMessage,
		onTyping:   opts.OnTyping,
		onPresence: opts.OnPresence,
		state:      StateDisconnected,
	}, nil
}

// Connect registers the channel handlers and moves to the connected state.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisconnected {
		return fmt.Errorf("chat: connect from state %s", c.state)
	}
	c.subs = []*realtime.Subscription{
		c.channel.Subscribe(EventNewMessage, c.handleNewMessage),
		c.channel.Subscribe(EventTypingStarted, c.handleTyping(true)),
		c.channel.Subscribe(EventTypingStopped, c.handleTyping(false)),
		c.channel.Subscribe(EventUserJoined, c.handlePresence(true)),
		c.channel.Subscribe(EventUserLeft, c.handlePresence(false)),
		c.channel.Subscribe(EventMessagesRead, c.handleMessagesRead),
		c.channel.Subscribe(EventError, c.handleServerError),
	}
	c.state = StateConnected
	return nil
}

// SelectAdmin opens a session with the chosen administrator, joins its room,
// and loads the history. End-user side only.
func (c *Client) SelectAdmin(ctx context.Context, adminID string) error {
	c.mu.Lock()
	if c.state != StateConnected {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("chat: select admin from state %s", state)
	}
	c.state = StateAwaitingSession
	c.mu.Unlock()

	sessionID, err := c.api.CreateChatSession(ctx, c.selfID, adminID)
	if err != nil {
		c.setState(StateConnected)
		return fmt.Errorf("chat: create session: %w", err)
	}
	return c.JoinSession(ctx, sessionID)
}

// JoinSession joins an existing session's room and loads its history. The
// administrator console calls this directly with a session picked from the
// active list.
func (c *Client) JoinSession(ctx context.Context, sessionID string) error {
	err := c.channel.Emit(EventJoinChat, joinPayload{
		SessionID: sessionID,
		UserID:    c.selfID,
		UserType:  c.userType,
	})
	if err != nil {
		c.setState(StateConnected)
		return fmt.Errorf("chat: join session: %w", err)
	}

	history, err := c.api.SessionMessages(ctx, sessionID)
	if err != nil {
		// The room join went through; start with an empty transcript rather
		// than failing the whole selection.
		log.Printf("chat: history fetch for %s: %v", sessionID, err)
		history = nil
	}

	c.mu.Lock()
	c.sessionID = sessionID
	c.transcript = history
	c.typing = false
	c.state = StateActive
	c.mu.Unlock()

	if c.recorder != nil {
		for _, msg := range history {
			if err := c.recorder.RecordMessage(sessionID, msg); err != nil {
				log.Printf("chat: record history: %v", err)
			}
		}
	}
	return nil
}

// StartAI switches to the AI assistant. No session or room is involved.
func (c *Client) StartAI() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return fmt.Errorf("chat: start AI from state %s", c.state)
	}
	c.state = StateAIMode
	c.sessionID = ""
	c.transcript = nil
	return nil
}

// Send delivers one message. In a live session the message goes over the
// channel and is appended only when the server echoes it back. In AI mode the
// user's line is appended immediately and exactly one reply line follows,
// either the assistant's answer or an error line.
func (c *Client) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	state := c.state
	sessionID := c.sessionID
	c.mu.Unlock()

	switch state {
	case StateActive:
		err := c.channel.Emit(EventSendMessage, sendPayload{
			SessionID:  sessionID,
			SenderID:   c.selfID,
			Content:    content,
			SenderType: c.userType,
		})
		if err != nil {
			return fmt.Errorf("chat: send: %w", err)
		}
		// Input clears after a send.
		c.InputChanged("")
		return nil
	case StateAIMode:
		return c.sendAI(ctx, content)
	default:
		return fmt.Errorf("chat: send from state %s", state)
	}
}

// sendAI runs one AI turn.
func (c *Client) sendAI(ctx context.Context, content string) error {
	c.append(api.ChatMessage{
		ID:          c.localID(),
		SenderID:    c.selfID,
		Content:     content,
		Timestamp:   api.Timestamp{Time: c.now()},
		MessageType: api.MessageTypeUser,
	})

	reply, err := c.api.AIChat(ctx, content, c.selfID)
	if err != nil {
		c.append(api.ChatMessage{
			ID:          c.localID(),
			SenderID:    "assistant",
			Content:     fmt.Sprintf("The assistant is unavailable: %v", err),
			Timestamp:   api.Timestamp{Time: c.now()},
			MessageType: MessageTypeError,
		})
		return nil
	}
	c.append(api.ChatMessage{
		ID:          c.localID(),
		SenderID:    "assistant",
		Content:     reply,
		Timestamp:   api.Timestamp{Time: c.now()},
		MessageType: api.MessageTypeAI,
	})
	return nil
}

// InputChanged tracks the compose box. Typing events fire on every transition
// between empty and non-empty, with no debouncing.
func (c *Client) InputChanged(text string) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	sessionID := c.sessionID
	wasTyping := c.typing
	isTyping := text != ""
	c.typing = isTyping
	c.mu.Unlock()

	if wasTyping == isTyping {
		return
	}
	event := EventTypingStart
	if !isTyping {
		event = EventTypingStop
	}
	if err := c.channel.Emit(event, typingPayload{SessionID: sessionID, UserID: c.selfID}); err != nil {
		log.Printf("chat: %s: %v", event, err)
	}
}

// Leave exits the current session room and returns to the connected state.
func (c *Client) Leave() error {
	c.mu.Lock()
	if c.state != StateActive && c.state != StateAIMode {
		c.mu.Unlock()
		return nil
	}
	state := c.state
	sessionID := c.sessionID
	c.sessionID = ""
	c.transcript = nil
	c.typing = false
	c.state = StateConnected
	c.mu.Unlock()

	if state == StateActive {
		err := c.channel.Emit(EventLeaveChat, leavePayload{SessionID: sessionID, UserID: c.selfID})
		if err != nil {
			return fmt.Errorf("chat: leave: %w", err)
		}
	}
	return nil
}

// Close cancels all channel subscriptions. The client is unusable afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.state = StateDisconnected
	c.sessionID = ""
	c.transcript = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// State reports the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID reports the joined session, empty outside a live session.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Transcript returns a copy of the visible message list.
func (c *Client) Transcript() []api.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.ChatMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// localID labels messages that exist only in this client (AI mode lines).
func (c *Client) localID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localSeq++
	return fmt.Sprintf("local-%d", c.localSeq)
}

// append adds a line to the transcript, archives it, and notifies the UI.
func (c *Client) append(msg api.ChatMessage) {
	c.mu.Lock()
	c.transcript = append(c.transcript, msg)
	sessionID := c.sessionID
	c.mu.Unlock()

	if c.recorder != nil {
		if err := c.recorder.RecordMessage(sessionID, msg); err != nil {
			log.Printf("chat: record message: %v", err)
		}
	}
	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

func (c *Client) handleNewMessage(arg json.RawMessage) {
	var ev newMessageEvent
	if err := json.Unmarshal(arg, &ev); err != nil {
		log.Printf("chat: new_message decode: %v", err)
		return
	}
	c.mu.Lock()
	active := c.state == StateActive
	c.mu.Unlock()
	if !active {
		return
	}
	c.append(api.ChatMessage{
		ID:          ev.ID,
		SenderID:    ev.SenderID,
		Content:     ev.Content,
		Timestamp:   ev.Timestamp,
		MessageType: ev.MessageType,
	})
	if ev.SenderID != c.selfID && ev.ID != "" {
		err := c.channel.Emit(EventMarkRead, markReadPayload{
			MessageIDs: []string{ev.ID},
			UserID:     c.selfID,
		})
		if err != nil {
			log.Printf("chat: mark_read: %v", err)
		}
	}
}

func (c *Client) handleTyping(active bool) func(json.RawMessage) {
	return func(arg json.RawMessage) {
		var ev typingEvent
		if err := json.Unmarshal(arg, &ev); err != nil || ev.UserID == c.selfID {
			return
		}
		if c.onTyping != nil {
			c.onTyping(ev.UserID, active)
		}
	}
}

func (c *Client) handlePresence(joined bool) func(json.RawMessage) {
	return func(arg json.RawMessage) {
		var ev presenceEvent
		if err := json.Unmarshal(arg, &ev); err != nil {
			return
		}
		if c.onPresence != nil {
			c.onPresence(ev.UserID, ev.UserType, joined)
		}
	}
}

func (c *Client) handleMessagesRead(arg json.RawMessage) {
	var ev messagesReadEvent
	if err := json.Unmarshal(arg, &ev); err != nil {
		return
	}
	read := make(map[string]bool, len(ev.MessageIDs))
	for _, id := range ev.MessageIDs {
		read[id] = true
	}
	c.mu.Lock()
	for i := range c.transcript {
		if read[c.transcript[i].ID] {
			c.transcript[i].IsRead = true
		}
	}
	c.mu.Unlock()
}

func (c *Client) handleServerError(arg json.RawMessage) {
	var ev struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(arg, &ev); err != nil {
		return
	}
	log.Printf("chat: server error: %s", ev.Message)
}
