package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandNotifier runs a shell command template for each event, e.g.
// "notify-send 'DMS' '{{.Body}}'".
type CommandNotifier struct {
	template string
}

// NewCommand creates a command notifier from a shell template.
func NewCommand(template string) *CommandNotifier {
	return &CommandNotifier{template: template}
}

func (c *CommandNotifier) Name() string { return "command" }

// Send runs the templated command.
func (c *CommandNotifier) Send(ctx context.Context, evt Event) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", templateEvent(c.template, evt))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify: command: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// templateEvent replaces placeholders in the command template with event values.
func templateEvent(command string, evt Event) string {
	r := strings.NewReplacer(
		"{{.Title}}", shellQuoteSafe(evt.Title),
		"{{.Body}}", shellQuoteSafe(evt.Body),
	)
	return r.Replace(command)
}

// shellQuoteSafe strips single quotes so templated values cannot break out of
// a quoted argument.
func shellQuoteSafe(s string) string {
	return strings.ReplaceAll(s, "'", "")
}
