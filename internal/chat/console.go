package chat

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

// ConsoleOpts configures the administrator console.
type ConsoleOpts struct {
	API      SessionAPI
	Channel  realtime.Channel
	Recorder Recorder
	AdminID  string

	// PollInterval is how often the active-session list is refreshed. This is
	// the fallback path; session churn also arrives over the channel. Defaults
	// to 5 seconds.
	PollInterval time.Duration

	OnSessions func([]api.ChatSession)
	OnMessage  func(api.ChatMessage)
	OnTyping   func(userID string, active bool)
	OnPresence func(userID, userType string, joined bool)
}

// Console is the administrator's side of the chat: a polled list of active
// sessions plus the usual message handling once a session is joined.
type Console struct {
	api      SessionAPI
	client   *Client
	interval time.Duration

	onSessions func([]api.ChatSession)

	mu       sync.Mutex
	sessions []api.ChatSession
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewConsole builds a console around an admin-typed chat client.
func NewConsole(opts ConsoleOpts) (*Console, error) {
	if opts.AdminID == "" {
		return nil, fmt.Errorf("chat: AdminID is required")
	}
	client, err := NewClient(Opts{
		API:        opts.API,
		Channel:    opts.Channel,
		Recorder:   opts.Recorder,
		SelfID:     opts.AdminID,
		UserType:   "admin",
		OnMessage:  opts.OnMessage,
		OnTyping:   opts.OnTyping,
		OnPresence: opts.OnPresence,
	})
	if err != nil {
		return nil, err
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Console{
		api:        opts.API,
		client:     client,
		interval:   interval,
		onSessions: opts.OnSessions,
	}, nil
}

// Start connects the channel and begins the session poll loop. The loop stops
// when ctx is cancelled or Stop is called.
func (c *Console) Start(ctx context.Context) error {
	if err := c.client.Connect(); err != nil {
		return err
	}
	c.refresh(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				c.refresh(loopCtx)
			}
		}
	}()
	return nil
}

// refresh pulls the active-session list once.
func (c *Console) refresh(ctx context.Context) {
	sessions, err := c.api.ActiveSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("chat: active sessions: %v", err)
		}
		return
	}
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()
	if c.onSessions != nil {
		c.onSessions(sessions)
	}
}

// Sessions returns the last polled active-session list.
func (c *Console) Sessions() []api.ChatSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.ChatSession, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// Join enters one of the active sessions.
func (c *Console) Join(ctx context.Context, sessionID string) error {
	return c.client.JoinSession(ctx, sessionID)
}

// Send delivers a message into the joined session.
func (c *Console) Send(ctx context.Context, content string) error {
	return c.client.Send(ctx, content)
}

// InputChanged forwards compose-box transitions to the typing indicator.
func (c *Console) InputChanged(text string) {
	c.client.InputChanged(text)
}

// Leave exits the joined session but keeps polling.
func (c *Console) Leave() error {
	return c.client.Leave()
}

// Transcript returns the joined session's visible messages.
func (c *Console) Transcript() []api.ChatMessage {
	return c.client.Transcript()
}

// Stop ends the poll loop and tears down the channel subscriptions.
func (c *Console) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.client.Close()
}
