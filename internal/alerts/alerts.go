// Package alerts surfaces overconsumption pushes: one visible banner at a
// time, auto-dismissed after a fixed delay, fanned out to the configured
// notifier sinks and archived locally.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/notify"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

// EventName is the channel event carrying overconsumption pushes.
const EventName = "overconsumption_notification"

// DefaultDismissAfter is how long a banner stays up without manual dismissal.
const DefaultDismissAfter = 10 * time.Second

// Alert is one overconsumption push. The backend sends user_id as a string
// and device_id as a number.
type Alert struct {
	UserID      string        `json:"user_id"`
	DeviceID    int64         `json:"device_id"`
	Consumption api.Number    `json:"consumption"`
	Threshold   api.Number    `json:"threshold"`
	Message     string        `json:"message"`
	Timestamp   api.Timestamp `json:"timestamp"`
}

// Recorder archives matched alerts.
type Recorder interface {
	RecordAlert(alert Alert) error
}

// ListenerOpts configures an alert listener.
type ListenerOpts struct {
	Channel realtime.Channel
	UserID  string // viewer identity; pushes for other users are dropped

	Notifiers []notify.Notifier
	Recorder  Recorder // optional

	// DismissAfter overrides the banner lifetime. Zero means the default.
	DismissAfter time.Duration

	// OnChange fires with the visible alert, or nil when the banner clears.
	OnChange func(*Alert)

	Now func() time.Time // test hook
}

// Listener holds the one visible alert and its dismissal timer.
type Listener struct {
	channel      realtime.Channel
	userID       string
	notifiers    []notify.Notifier
	recorder     Recorder
	dismissAfter time.Duration
	onChange     func(*Alert)
	now          func() time.Time

	mu      sync.Mutex
	current *Alert
	seq     int
	timer   *time.Timer
	sub     *realtime.Subscription
}

// NewListener builds a listener; Start attaches it to the channel.
func NewListener(opts ListenerOpts) (*Listener, error) {
	if opts.Channel == nil {
		return nil, fmt.Errorf("alerts: Channel is required")
	}
	if opts.UserID == "" {
		return nil, fmt.Errorf("alerts: UserID is required")
	}
	dismissAfter := opts.DismissAfter
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Listener{
		channel:      opts.Channel,
		userID:       opts.UserID,
		notifiers:    opts.Notifiers,
		recorder:     opts.Recorder,
		dismissAfter: dismissAfter,
		onChange:     opts.OnChange,
		now:          now,
	}, nil
}

// Start subscribes to overconsumption pushes.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		return
	}
	l.sub = l.channel.Subscribe(EventName, l.handle)
}

// Stop detaches from the channel and clears any visible banner.
func (l *Listener) Stop() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.current = nil
	l.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// Current returns the visible alert, nil when no banner is up.
func (l *Listener) Current() *Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	alert := *l.current
	return &alert
}

// Dismiss clears the banner manually.
func (l *Listener) Dismiss() {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	changed := l.current != nil
	l.current = nil
	l.mu.Unlock()

	if changed && l.onChange != nil {
		l.onChange(nil)
	}
}

// handle processes one push off the channel.
func (l *Listener) handle(arg json.RawMessage) {
	var alert Alert
	if err := json.Unmarshal(arg, &alert); err != nil {
		log.Printf("alerts: decode: %v", err)
		return
	}
	if alert.UserID != l.userID {
		return
	}
	if alert.Message == "" {
		alert.Message = fmt.Sprintf(
			"ALERT: Device %d has exceeded its consumption limit! Current: %.2f kWh, Maximum allowed: %.2f kWh",
			alert.DeviceID, float64(alert.Consumption), float64(alert.Threshold))
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = api.Timestamp{Time: l.now()}
	}

	l.show(alert)

	if l.recorder != nil {
		if err := l.recorder.RecordAlert(alert); err != nil {
			log.Printf("alerts: record: %v", err)
		}
	}
	notify.Dispatch(context.Background(), l.notifiers, notify.Event{
		Title: "Overconsumption alert",
		Body:  alert.Message,
		Color: "#d62728",
		Fields: []notify.Field{
			{Name: "Device", Value: fmt.Sprintf("%d", alert.DeviceID), Short: true},
			{Name: "Consumption", Value: fmt.Sprintf("%.2f kWh", float64(alert.Consumption)), Short: true},
			{Name: "Limit", Value: fmt.Sprintf("%.2f kWh", float64(alert.Threshold)), Short: true},
		},
	})
}

// show replaces the visible banner and restarts the dismissal timer. The
// timer clears only the alert it was armed for, so a newer banner survives
// an older banner's expiry.
func (l *Listener) show(alert Alert) {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.seq++
	seq := l.seq
	l.current = &alert
	l.timer = time.AfterFunc(l.dismissAfter, func() { l.expire(seq) })
	l.mu.Unlock()

	if l.onChange != nil {
		shown := alert
		l.onChange(&shown)
	}
}

// expire clears the banner if it is still the one the timer was armed for.
func (l *Listener) expire(seq int) {
	l.mu.Lock()
	if l.seq != seq || l.current == nil {
		l.mu.Unlock()
		return
	}
	l.current = nil
	l.timer = nil
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(nil)
	}
}
