package chat

import (
	"context"
	"testing"
	"time"

	"github.com/Simi445/DMS-K8S/internal/api"
)

func TestConsolePollsActiveSessions(t *testing.T) {
	channel := newMockChannel()
	backend := &mockAPI{
		active: []api.ChatSession{{ID: "sess-1", ClientID: "user-1", AdminID: "admin-1"}},
	}

	updates := make(chan []api.ChatSession, 8)
	console, err := NewConsole(ConsoleOpts{
		API:          backend,
		Channel:      channel,
		AdminID:      "admin-1",
		PollInterval: 20 * time.Millisecond,
		OnSessions:   func(s []api.ChatSession) { updates <- s },
	})
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	if err := console.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer console.Stop()

	// One refresh on start, then the ticker.
	for i := 0; i < 2; i++ {
		select {
		case sessions := <-updates:
			if len(sessions) != 1 || sessions[0].ID != "sess-1" {
				t.Errorf("sessions = %#v", sessions)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("no session update")
		}
	}

	if got := console.Sessions(); len(got) != 1 {
		t.Errorf("Sessions() = %#v", got)
	}
}

func TestConsoleJoinSendsAdminIdentity(t *testing.T) {
	channel := newMockChannel()
	backend := &mockAPI{active: []api.ChatSession{{ID: "sess-1"}}}
	console, err := NewConsole(ConsoleOpts{
		API:          backend,
		Channel:      channel,
		AdminID:      "admin-1",
		PollInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	if err := console.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer console.Stop()

	if err := console.Join(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := console.Send(context.Background(), "how can I help?"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	emits := channel.emitted()
	join := emits[0].payload.(joinPayload)
	if join.UserType != "admin" || join.UserID != "admin-1" {
		t.Errorf("join payload = %#v", join)
	}
	var send *sendPayload
	for _, e := range emits {
		if e.event == EventSendMessage {
			p := e.payload.(sendPayload)
			send = &p
		}
	}
	if send == nil {
		t.Fatalf("no send_message emitted, events = %v", channel.events())
	}
	if send.SenderType != "admin" || send.SessionID != "sess-1" {
		t.Errorf("send payload = %#v", *send)
	}
}
