package alerts

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Simi445/DMS-K8S/internal/notify"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

type stubChannel struct {
	mu       sync.Mutex
	handlers []func(json.RawMessage)
}

func (s *stubChannel) Emit(event string, payload any) error { return nil }

func (s *stubChannel) Subscribe(event string, fn func(json.RawMessage)) *realtime.Subscription {
	s.mu.Lock()
	s.handlers = append(s.handlers, fn)
	s.mu.Unlock()
	return realtime.NewSubscription(func() {})
}

func (s *stubChannel) push(t *testing.T, payload string) {
	t.Helper()
	s.mu.Lock()
	fns := append([]func(json.RawMessage){}, s.handlers...)
	s.mu.Unlock()
	if len(fns) == 0 {
		t.Fatal("no alert handler registered")
	}
	for _, fn := range fns {
		fn(json.RawMessage(payload))
	}
}

type stubRecorder struct {
	mu     sync.Mutex
	alerts []Alert
}

func (s *stubRecorder) RecordAlert(alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

const matchingAlert = `{"user_id":"7","device_id":3,"consumption":120.5,"threshold":100,` +
	`"message":"ALERT: Device 3 has exceeded its consumption limit!","timestamp":"2024-03-01T12:00:00"}`

func newTestListener(t *testing.T, opts ListenerOpts) (*Listener, *stubChannel) {
	t.Helper()
	channel := &stubChannel{}
	opts.Channel = channel
	if opts.UserID == "" {
		opts.UserID = "7"
	}
	listener, err := NewListener(opts)
	if err != nil {
		t.Fatalf("NewListener: %v", err)
	}
	listener.Start()
	t.Cleanup(listener.Stop)
	return listener, channel
}

func TestMatchingAlertBecomesVisible(t *testing.T) {
	recorder := &stubRecorder{}
	sink := &notify.MockNotifier{}
	listener, channel := newTestListener(t, ListenerOpts{
		Recorder:  recorder,
		Notifiers: []notify.Notifier{sink},
	})

	channel.push(t, matchingAlert)

	current := listener.Current()
	if current == nil {
		t.Fatal("no visible alert")
	}
	if current.DeviceID != 3 || float64(current.Consumption) != 120.5 {
		t.Errorf("alert = %#v", current)
	}

	recorder.mu.Lock()
	archived := len(recorder.alerts)
	recorder.mu.Unlock()
	if archived != 1 {
		t.Errorf("archived = %d, want 1", archived)
	}
	if events := sink.Events(); len(events) != 1 || events[0].Title != "Overconsumption alert" {
		t.Errorf("notifier events = %#v", events)
	}
}

func TestAlertForOtherUserIsDropped(t *testing.T) {
	sink := &notify.MockNotifier{}
	listener, channel := newTestListener(t, ListenerOpts{
		UserID:    "42",
		Notifiers: []notify.Notifier{sink},
	})

	channel.push(t, matchingAlert) // user_id 7, viewer 42

	if listener.Current() != nil {
		t.Error("alert for another user became visible")
	}
	if len(sink.Events()) != 0 {
		t.Error("notifiers fired for another user's alert")
	}
}

func TestAutoDismiss(t *testing.T) {
	cleared := make(chan bool, 4)
	listener, channel := newTestListener(t, ListenerOpts{
		DismissAfter: 40 * time.Millisecond,
		OnChange:     func(a *Alert) { cleared <- a == nil },
	})

	channel.push(t, matchingAlert)
	if <-cleared {
		t.Fatal("first change was a clear")
	}

	select {
	case wasClear := <-cleared:
		if !wasClear {
			t.Error("second change was not a clear")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("banner never auto-dismissed")
	}
	if listener.Current() != nil {
		t.Error("alert still visible after auto-dismiss")
	}
}

func TestNewerAlertSurvivesOldTimer(t *testing.T) {
	listener, channel := newTestListener(t, ListenerOpts{
		DismissAfter: 60 * time.Millisecond,
	})

	channel.push(t, matchingAlert)
	time.Sleep(30 * time.Millisecond)
	channel.push(t, `{"user_id":"7","device_id":9,"consumption":"55.0","threshold":"50.0"}`)

	// Past the first alert's deadline but within the second's.
	time.Sleep(45 * time.Millisecond)
	current := listener.Current()
	if current == nil {
		t.Fatal("newer alert was dismissed by the older timer")
	}
	if current.DeviceID != 9 {
		t.Errorf("visible device = %d, want 9", current.DeviceID)
	}
}

func TestManualDismiss(t *testing.T) {
	listener, channel := newTestListener(t, ListenerOpts{})

	channel.push(t, matchingAlert)
	listener.Dismiss()
	if listener.Current() != nil {
		t.Error("alert visible after manual dismiss")
	}
	// Dismiss with no banner is a no-op.
	listener.Dismiss()
}

func TestMissingMessageIsSynthesized(t *testing.T) {
	listener, channel := newTestListener(t, ListenerOpts{
		Now: func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})

	channel.push(t, `{"user_id":"7","device_id":5,"consumption":77.519,"threshold":60}`)
	current := listener.Current()
	if current == nil {
		t.Fatal("no visible alert")
	}
	want := "ALERT: Device 5 has exceeded its consumption limit! Current: 77.52 kWh, Maximum allowed: 60.00 kWh"
	if current.Message != want {
		t.Errorf("message = %q, want %q", current.Message, want)
	}
	if current.Timestamp.IsZero() {
		t.Error("timestamp not backfilled")
	}
}
