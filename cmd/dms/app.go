package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/chat"
	"github.com/Simi445/DMS-K8S/internal/config"
	"github.com/Simi445/DMS-K8S/internal/session"
	"github.com/Simi445/DMS-K8S/internal/store"
)

// defaultConfigPath is where the CLI looks for its config unless -c is given.
const defaultConfigPath = "dms.yaml"

// app bundles everything a command needs: config, the token session, and
// the portal API client.
type app struct {
	cfg     *config.Config
	tokens  *session.FileStore
	manager *session.Manager
	client  *api.Client
}

// newApp loads the config and wires the session-backed API client.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	tokens, err := session.OpenFileStore(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	manager := session.NewManager(session.ManagerOpts{Store: tokens})
	client, err := api.New(api.Opts{BaseURL: cfg.Server.BaseURL, Tokens: tokens})
	if err != nil {
		manager.Close()
		return nil, err
	}
	return &app{cfg: cfg, tokens: tokens, manager: manager, client: client}, nil
}

// close releases the session watcher.
func (a *app) close() {
	a.manager.Close()
}

// openStore opens the local archive from config.
func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.Store.Driver, a.cfg.Store.DSN)
}

// recorder opens the local archive for chat logging. Archiving is
// best-effort; a missing store disables it with a warning.
func (a *app) recorder(cmd *cobra.Command) chat.Recorder {
	st, err := a.openStore()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: chat archive disabled: %v\n", err)
		return nil
	}
	return st
}

// requireSession fails early when no live token is present, before any
// request goes out.
func (a *app) requireSession() (session.Claims, error) {
	if !a.manager.Active() {
		return session.Claims{}, fmt.Errorf("not logged in; run 'dms login' first")
	}
	return a.manager.Claims(), nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
