package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeEngine is a minimal Engine.IO polling server. GETs drain a queue of
// outbound payloads, POSTs are recorded for assertions.
type fakeEngine struct {
	mu       sync.Mutex
	outbound chan string
	posts    []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{outbound: make(chan string, 16)}
}

func (f *fakeEngine) push(packets ...string) {
	f.outbound <- joinPayload(packets)
}

func (f *fakeEngine) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.posts))
	copy(out, f.posts)
	return out
}

func (f *fakeEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.posts = append(f.posts, string(data))
		f.mu.Unlock()
		io.WriteString(w, "ok")
		return
	}
	if r.URL.Query().Get("sid") == "" {
		io.WriteString(w, `0{"sid":"fake-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000}`)
		return
	}
	select {
	case payload := <-f.outbound:
		io.WriteString(w, payload)
	case <-time.After(200 * time.Millisecond):
		io.WriteString(w, "6")
	}
}

func dialFake(t *testing.T, engine *fakeEngine) *Client {
	t.Helper()
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	client, err := Dial(context.Background(), Opts{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDialJoinsNamespace(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)
	defer client.Close()

	posts := engine.received()
	if len(posts) == 0 || posts[0] != "40" {
		t.Errorf("posts = %#v, want first post \"40\"", posts)
	}
}

func TestSubscribeDispatchesEvents(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)

	got := make(chan string, 1)
	client.Subscribe("new_message", func(arg json.RawMessage) {
		var body struct {
			Content string `json:"content"`
		}
		json.Unmarshal(arg, &body)
		got <- body.Content
	})

	engine.push(`42["new_message",{"content":"hello"}]`)

	select {
	case content := <-got:
		if content != "hello" {
			t.Errorf("content = %q", content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestCancelledSubscriptionStopsDelivery(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)

	calls := make(chan struct{}, 4)
	sub := client.Subscribe("typing", func(json.RawMessage) { calls <- struct{}{} })

	kept := make(chan struct{}, 4)
	client.Subscribe("typing", func(json.RawMessage) { kept <- struct{}{} })

	sub.Cancel()
	sub.Cancel() // idempotent

	engine.push(`42["typing",{}]`)

	select {
	case <-kept:
	case <-time.After(2 * time.Second):
		t.Fatal("surviving handler was not invoked")
	}
	select {
	case <-calls:
		t.Error("cancelled handler was invoked")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEmitPostsEventFrame(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)

	if err := client.Emit("join_chat", map[string]string{"session_id": "s1"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	want := `42["join_chat",{"session_id":"s1"}]`
	for _, p := range engine.received() {
		if p == want {
			return
		}
	}
	t.Errorf("posts = %#v, missing %q", engine.received(), want)
}

func TestPingGetsPong(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)
	defer client.Close()

	engine.push("2")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, p := range engine.received() {
			if p == "3" {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("no pong recorded, posts = %#v", engine.received())
}

func TestEmitAfterCloseFails(t *testing.T) {
	engine := newFakeEngine()
	client := dialFake(t, engine)
	client.Close()

	if err := client.Emit("join_chat", nil); err == nil {
		t.Error("Emit after Close returned nil error")
	}
}
