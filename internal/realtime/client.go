// Package realtime implements the portal's Socket.IO channel over Engine.IO
// long-polling. The backend serves the polling transport only, so the client
// keeps one HTTP poll in flight and POSTs outbound packets on the side.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Channel is what the chat and alert components depend on: emit an event,
// subscribe to an event. realtime.Client is the production implementation.
type Channel interface {
	Emit(event string, payload any) error
	Subscribe(event string, fn func(json.RawMessage)) *Subscription
}

// Subscription is the handle for one event subscription. Cancel releases it
// and is safe to call more than once, so teardown paths can be unconditional.
type Subscription struct {
	once    sync.Once
	release func()
}

// NewSubscription wraps a release function. Exposed for Channel mocks.
func NewSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Cancel releases the subscription.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// Client is a Socket.IO polling client bound to the default namespace.
type Client struct {
	endpoint string
	http     *http.Client

	mu       sync.Mutex
	sid      string
	closed   bool
	nextID   int
	handlers map[string]map[int]func(json.RawMessage)

	cancel context.CancelFunc
	done   chan struct{}
}

// Opts holds parameters for dialing the channel.
type Opts struct {
	BaseURL    string // portal origin, e.g. http://localhost:8080
	SocketPath string // defaults to /socket.io
	HTTPClient *http.Client
}

// Dial performs the Engine.IO handshake, joins the default namespace, and
// starts the receive loop. The loop stops when ctx is cancelled or Close is
// called.
func Dial(ctx context.Context, opts Opts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("realtime: base URL is required")
	}
	path := opts.SocketPath
	if path == "" {
		path = "/socket.io"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Long-polling holds requests open; the timeout must exceed the
		// server's poll window.
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	c := &Client{
		endpoint: strings.TrimSuffix(opts.BaseURL, "/") + path + "/?EIO=4&transport=polling",
		http:     httpClient,
		handlers: make(map[string]map[int]func(json.RawMessage)),
		done:     make(chan struct{}),
	}

	if err := c.open(ctx); err != nil {
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.pollLoop(loopCtx)
	return c, nil
}

// open runs the handshake and the namespace connect.
func (c *Client) open(ctx context.Context) error {
	body, err := c.get(ctx, "")
	if err != nil {
		return fmt.Errorf("realtime: handshake: %w", err)
	}
	packets := splitPayload(body)
	if len(packets) == 0 || packets[0][0] != packetOpen {
		return fmt.Errorf("realtime: handshake: unexpected payload %q", truncate(body, 60))
	}
	var hs handshake
	if err := json.Unmarshal([]byte(packets[0][1:]), &hs); err != nil {
		return fmt.Errorf("realtime: handshake: %w", err)
	}
	if hs.SID == "" {
		return fmt.Errorf("realtime: handshake: empty sid")
	}
	c.mu.Lock()
	c.sid = hs.SID
	c.mu.Unlock()

	// Join the default namespace.
	if err := c.post(ctx, string(packetMessage)+string(sioConnect)); err != nil {
		return fmt.Errorf("realtime: namespace connect: %w", err)
	}
	log.Printf("realtime: connected sid=%s", hs.SID)
	return nil
}

// Emit sends one event to the server. Fire-and-forget: delivery is the
// transport's problem.
func (c *Client) Emit(event string, payload any) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return fmt.Errorf("realtime: emit %s: channel closed", event)
	}

	frame, err := encodeEvent(event, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.post(ctx, frame); err != nil {
		return fmt.Errorf("realtime: emit %s: %w", event, err)
	}
	return nil
}

// Subscribe registers fn for an event. The returned handle must be cancelled
// on teardown; duplicate registration across reconnects is the exact failure
// this handle discipline prevents.
func (c *Client) Subscribe(event string, fn func(json.RawMessage)) *Subscription {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]func(json.RawMessage))
	}
	c.handlers[event][id] = fn
	c.mu.Unlock()

	return NewSubscription(func() {
		c.mu.Lock()
		delete(c.handlers[event], id)
		c.mu.Unlock()
	})
}

// Close stops the poll loop and releases all handlers.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.handlers = make(map[string]map[int]func(json.RawMessage))
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	log.Printf("realtime: disconnected")
	return nil
}

// pollLoop keeps one GET in flight and dispatches whatever comes back.
// Transport errors are logged and retried; the server re-establishes state
// on its own.
func (c *Client) pollLoop(ctx context.Context) {
	defer close(c.done)
	for {
		if ctx.Err() != nil {
			return
		}
		body, err := c.get(ctx, "")
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("realtime: poll: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		for _, frame := range splitPayload(body) {
			c.handleFrame(ctx, frame)
		}
	}
}

// handleFrame processes one inbound packet.
func (c *Client) handleFrame(ctx context.Context, frame string) {
	if frame == "" {
		return
	}
	switch frame[0] {
	case packetPing:
		if err := c.post(ctx, string(packetPong)); err != nil && ctx.Err() == nil {
			log.Printf("realtime: pong: %v", err)
		}
	case packetClose:
		log.Printf("realtime: server closed the connection")
	case packetNoop:
		// Poll window expired with nothing to deliver.
	case packetMessage:
		if len(frame) < 2 {
			return
		}
		switch frame[1] {
		case sioConnect:
			// Namespace ack.
		case sioDisconnect:
			log.Printf("realtime: namespace disconnect")
		case sioEvent:
			event, arg, ok := decodeEvent(frame)
			if !ok {
				log.Printf("realtime: undecodable event frame %q", truncate(frame, 60))
				return
			}
			c.dispatch(event, arg)
		}
	}
}

// dispatch invokes every handler registered for the event.
func (c *Client) dispatch(event string, arg json.RawMessage) {
	c.mu.Lock()
	fns := make([]func(json.RawMessage), 0, len(c.handlers[event]))
	for _, fn := range c.handlers[event] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(arg)
	}
}

// get issues one polling GET.
func (c *Client) get(ctx context.Context, extra string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.url()+extra, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 60))
	}
	return string(data), nil
}

// post sends one payload of outbound packets.
func (c *Client) post(ctx context.Context, payload string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.url(), strings.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// url builds the transport URL with the session id once established.
func (c *Client) url() string {
	c.mu.Lock()
	sid := c.sid
	c.mu.Unlock()
	u := fmt.Sprintf("%s&t=%d", c.endpoint, time.Now().UnixNano())
	if sid != "" {
		u += "&sid=" + sid
	}
	return u
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
