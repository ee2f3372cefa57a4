// Package notify fans overconsumption alerts and digests out to the
// configured sinks: a shell command, Slack, or Discord.
package notify

import (
	"context"
	"log"

	"github.com/Simi445/DMS-K8S/internal/config"
)

// Field is one name/value pair rendered inside an event.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Event is a platform-neutral notification.
type Event struct {
	Title  string
	Body   string
	Color  string // hex, e.g. "#d62728"
	Fields []Field
}

// Notifier delivers one event to a sink.
type Notifier interface {
	Name() string
	Send(ctx context.Context, evt Event) error
}

// Dispatch sends the event to every notifier. Best-effort: failures are
// logged, not returned, so one broken sink cannot block the others.
func Dispatch(ctx context.Context, notifiers []Notifier, evt Event) {
	for _, n := range notifiers {
		if err := n.Send(ctx, evt); err != nil {
			log.Printf("notify: %s: %v", n.Name(), err)
		}
	}
}

// FromConfig builds the notifier set the config enables.
func FromConfig(cfg config.NotifyConfig) ([]Notifier, error) {
	var notifiers []Notifier
	if cfg.Command != "" {
		notifiers = append(notifiers, NewCommand(cfg.Command))
	}
	if cfg.Slack.Token != "" {
		n, err := NewSlack(SlackOpts{Token: cfg.Slack.Token, Channel: cfg.Slack.Channel})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Discord.Token != "" {
		n, err := NewDiscord(DiscordOpts{Token: cfg.Discord.Token, Channel: cfg.Discord.Channel})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	return notifiers, nil
}
