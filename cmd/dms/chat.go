package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Simi445/DMS-K8S/internal/api"
	"github.com/Simi445/DMS-K8S/internal/chat"
	"github.com/Simi445/DMS-K8S/internal/realtime"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		adminID    string
		aiMode     bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a support chat with an administrator or the AI assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, adminID, aiMode)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&adminID, "admin", "", "admin id to chat with (prompted when omitted)")
	cmd.Flags().BoolVar(&aiMode, "ai", false, "chat with the AI assistant instead of an admin")

	cmd.AddCommand(newChatConsoleCmd())
	cmd.AddCommand(newChatExportCmd())
	return cmd
}

func runChat(cmd *cobra.Command, configPath, adminID string, aiMode bool) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	claims, err := a.requireSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	channel, err := realtime.Dial(cmd.Context(), realtime.Opts{
		BaseURL:    a.cfg.Server.BaseURL,
		SocketPath: a.cfg.Server.SocketPath,
	})
	if err != nil {
		return err
	}
	defer channel.Close()

	client, err := chat.NewClient(chat.Opts{
		API:      a.client,
		Channel:  channel,
		Recorder: a.recorder(cmd),
		SelfID:   fmt.Sprintf("%d", claims.AuthID),
		OnMessage: func(msg api.ChatMessage) {
			printMessage(out, msg)
		},
		OnTyping: func(userID string, active bool) {
			if active {
				fmt.Fprintf(out, "%s is typing...\n", userID)
			}
		},
		OnPresence: func(userID, userType string, joined bool) {
			if joined {
				fmt.Fprintf(out, "%s (%s) joined\n", userID, userType)
			} else {
				fmt.Fprintf(out, "%s left\n", userID)
			}
		},
	})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Connect(); err != nil {
		return err
	}

	if aiMode {
		if err := client.StartAI(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Chatting with the AI assistant. Type /quit to exit.")
	} else {
		if adminID == "" {
			adminID, err = pickAdmin(cmd, a)
			if err != nil {
				return err
			}
		}
		if err := client.SelectAdmin(cmd.Context(), adminID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Connected to admin %s (session %s). Type /quit to exit.\n", adminID, client.SessionID())
		for _, msg := range client.Transcript() {
			printMessage(out, msg)
		}
	}

	chatLoop(cmd.Context(), cmd.InOrStdin(), out, client)

	if err := client.Leave(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: leave chat: %v\n", err)
	}
	return nil
}

// chatLoop reads lines from in and sends each as one message. Empty lines are
// ignored; /quit ends the session.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, client *chat.Client) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return
		}
		client.InputChanged(line)
		if err := client.Send(ctx, line); err != nil {
			fmt.Fprintf(out, "send failed: %v\n", err)
		}
	}
}

func pickAdmin(cmd *cobra.Command, a *app) (string, error) {
	admins, err := a.client.Admins(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(admins) == 0 {
		return "", fmt.Errorf("no administrators available; try 'dms chat --ai'")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available administrators:")
	for _, adm := range admins {
		status := "offline"
		if adm.IsOnline {
			status = "online"
		}
		fmt.Fprintf(out, "  %s  %s (%s)\n", adm.ID, adm.Username, status)
	}
	fmt.Fprint(out, "Admin id: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return "", fmt.Errorf("no admin selected")
	}
	id := strings.TrimSpace(scanner.Text())
	if id == "" {
		return "", fmt.Errorf("no admin selected")
	}
	return id, nil
}

func printMessage(out io.Writer, msg api.ChatMessage) {
	stamp := ""
	if !msg.Timestamp.IsZero() {
		stamp = msg.Timestamp.Format("15:04") + " "
	}
	switch msg.MessageType {
	case api.MessageTypeAI:
		fmt.Fprintf(out, "%s[assistant] %s\n", stamp, msg.Content)
	case chat.MessageTypeError:
		fmt.Fprintf(out, "%s[error] %s\n", stamp, msg.Content)
	case api.MessageTypeNotification:
		fmt.Fprintf(out, "%s[notice] %s\n", stamp, msg.Content)
	default:
		fmt.Fprintf(out, "%s%s: %s\n", stamp, msg.SenderID, msg.Content)
	}
}

func newChatConsoleCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Answer client chats as an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatConsole(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runChatConsole(cmd *cobra.Command, configPath string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	claims, err := a.requireSession()
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return fmt.Errorf("chat console requires an admin account")
	}

	out := cmd.OutOrStdout()
	channel, err := realtime.Dial(cmd.Context(), realtime.Opts{
		BaseURL:    a.cfg.Server.BaseURL,
		SocketPath: a.cfg.Server.SocketPath,
	})
	if err != nil {
		return err
	}
	defer channel.Close()

	console, err := chat.NewConsole(chat.ConsoleOpts{
		API:      a.client,
		Channel:  channel,
		Recorder: a.recorder(cmd),
		AdminID:  fmt.Sprintf("%d", claims.AuthID),
		OnSessions: func(sessions []api.ChatSession) {
			fmt.Fprintf(out, "%d active session(s); /sessions to list\n", len(sessions))
		},
		OnMessage: func(msg api.ChatMessage) {
			printMessage(out, msg)
		},
		OnTyping: func(userID string, active bool) {
			if active {
				fmt.Fprintf(out, "%s is typing...\n", userID)
			}
		},
	})
	if err != nil {
		return err
	}

	if err := console.Start(cmd.Context()); err != nil {
		return err
	}
	defer console.Stop()

	fmt.Fprintln(out, "Console ready. Commands: /sessions, /join <id>, /leave, /quit. Anything else is sent to the joined session.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/sessions":
			printSessions(out, console.Sessions())
		case strings.HasPrefix(line, "/join "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/join "))
			if err := console.Join(cmd.Context(), id); err != nil {
				fmt.Fprintf(out, "join failed: %v\n", err)
				continue
			}
			for _, msg := range console.Transcript() {
				printMessage(out, msg)
			}
		case line == "/leave":
			if err := console.Leave(); err != nil {
				fmt.Fprintf(out, "leave failed: %v\n", err)
			}
		default:
			console.InputChanged(line)
			if err := console.Send(cmd.Context(), line); err != nil {
				fmt.Fprintf(out, "send failed: %v\n", err)
			}
		}
	}
	return nil
}

func printSessions(out io.Writer, sessions []api.ChatSession) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No active sessions.")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(out, "  %s  client %s  last activity %s\n", s.ID, s.ClientID, s.LastActivity.Format("15:04:05"))
	}
}

func newChatExportCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print archived chat transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.openStore()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ids := []string{sessionID}
			if sessionID == "" {
				ids, err = st.SessionIDs()
				if err != nil {
					return err
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(out, "No archived sessions.")
				return nil
			}

			for _, id := range ids {
				lines, err := st.Transcript(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Session %s (%d messages)\n", id, len(lines))
				for _, line := range lines {
					fmt.Fprintf(out, "%s  %s [%s]: %s\n",
						line.SentAt.Format("2006-01-02 15:04"), line.SenderID, line.MessageType, line.Content)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&sessionID, "session", "", "only this session id (default all)")
	return cmd
}
